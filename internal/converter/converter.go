// Package converter runs a whole export conversion: decrypt, unwrap, parse,
// then map and write every record into the destination databases.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vaultport/internal/filex"
	"github.com/dmitrijs2005/vaultport/internal/logging"
	"github.com/dmitrijs2005/vaultport/internal/mapper"
	"github.com/dmitrijs2005/vaultport/internal/source"
	"github.com/dmitrijs2005/vaultport/internal/vaultdb"
	"github.com/dmitrijs2005/vaultport/internal/writer"
)

// Options describe one run. TOTPPath and DebugDumpPath are optional.
type Options struct {
	InputPath     string
	OutputPath    string
	TOTPPath      string
	DebugDumpPath string

	SourcePassphrase []byte
	OutputPassphrase []byte
	TOTPPassphrase   []byte
}

// Report summarizes a successful run.
type Report struct {
	Vaults      int
	Entries     int
	TOTPEntries int
	Renamed     int
}

// Converter is stateless between runs.
type Converter struct {
	log        logging.Logger
	mapperOpts []mapper.Option
	writerOpts []writer.Option
}

type Option func(*Converter)

// WithMapperOptions configures the mapper built for each run.
func WithMapperOptions(opts ...mapper.Option) Option {
	return func(c *Converter) { c.mapperOpts = append(c.mapperOpts, opts...) }
}

// WithWriterOptions configures the writers built for each run.
func WithWriterOptions(opts ...writer.Option) Option {
	return func(c *Converter) { c.writerOpts = append(c.writerOpts, opts...) }
}

func New(log logging.Logger, opts ...Option) *Converter {
	c := &Converter{log: log}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run converts opts.InputPath. It is all or nothing: on error no output
// database is left behind.
func (c *Converter) Run(ctx context.Context, opts Options) (*Report, error) {
	doc, err := c.load(ctx, opts)
	if err != nil {
		return nil, err
	}

	report, err := c.write(ctx, doc, opts)
	if err != nil {
		_ = filex.RemoveIfExists(opts.OutputPath)
		if opts.TOTPPath != "" {
			_ = filex.RemoveIfExists(opts.TOTPPath)
		}
		return nil, err
	}
	return report, nil
}

func (c *Converter) load(ctx context.Context, opts Options) (*source.Document, error) {
	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if source.IsPlain(data) {
		c.log.Info(ctx, "input is not encrypted, skipping decryption")
	} else {
		data, err = source.Decrypt(data, opts.SourcePassphrase)
		if err != nil {
			return nil, err
		}
	}

	if opts.DebugDumpPath != "" {
		if err := filex.WriteSecretFile(opts.DebugDumpPath, data); err != nil {
			return nil, fmt.Errorf("debug dump: %w", err)
		}
		c.log.Warn(ctx, "decrypted export written to disk", "path", opts.DebugDumpPath)
	}

	raw, err := source.Unwrap(data)
	if err != nil {
		return nil, err
	}

	doc, err := source.ParseDocument(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c.log.Info(ctx, "export parsed", "vaults", len(doc.Vaults), "records", doc.RecordCount())
	return doc, nil
}

func (c *Converter) write(ctx context.Context, doc *source.Document, opts Options) (report *Report, err error) {
	out, err := vaultdb.Create(ctx, opts.OutputPath, opts.OutputPassphrase)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer func() { err = errors.Join(err, out.Close()) }()

	v := &visitor{
		log:    c.log,
		mapper: mapper.New(c.mapperOpts...),
		main:   target{store: out, writer: writer.New(c.writerOpts...)},
	}

	if opts.TOTPPath != "" {
		totp, cerr := vaultdb.Create(ctx, opts.TOTPPath, opts.TOTPPassphrase)
		if cerr != nil {
			return nil, fmt.Errorf("create totp output: %w", cerr)
		}
		defer func() { err = errors.Join(err, totp.Close()) }()
		v.totp = &target{store: totp, writer: writer.New(c.writerOpts...)}
	}

	if err := doc.Walk(ctx, v); err != nil {
		return nil, err
	}

	if err := out.Save(ctx); err != nil {
		return nil, fmt.Errorf("save output: %w", err)
	}
	if v.totp != nil {
		if err := v.totp.store.Save(ctx); err != nil {
			return nil, fmt.Errorf("save totp output: %w", err)
		}
	}

	v.report.Renamed = v.main.writer.Renamed()
	if v.totp != nil {
		v.report.Renamed += v.totp.writer.Renamed()
	}
	c.log.Info(ctx, "conversion finished",
		"vaults", v.report.Vaults, "entries", v.report.Entries,
		"totp_entries", v.report.TOTPEntries, "renamed", v.report.Renamed)

	return &v.report, nil
}

type target struct {
	store  *vaultdb.Store
	writer *writer.Writer
	group  *vaultdb.Group
}

func (t *target) openVault(ctx context.Context, name string) error {
	g, err := t.store.AddGroup(ctx, t.store.Root(), name)
	if err != nil {
		return err
	}
	t.group = g
	return nil
}

// visitor writes every vault as a group of the main store, and of the
// one-time-password store when there is one.
type visitor struct {
	log    logging.Logger
	mapper *mapper.Mapper
	main   target
	totp   *target
	report Report
}

func (v *visitor) VisitVault(ctx context.Context, vault source.Vault) error {
	if err := v.main.openVault(ctx, vault.Name); err != nil {
		return fmt.Errorf("create group %q: %w", vault.Name, err)
	}
	if v.totp != nil {
		if err := v.totp.openVault(ctx, vault.Name); err != nil {
			return fmt.Errorf("create totp group %q: %w", vault.Name, err)
		}
	}
	v.report.Vaults++
	v.log.Info(ctx, "converting vault", "vault", vault.Name, "records", len(vault.Items))
	return nil
}

func (v *visitor) VisitRecord(ctx context.Context, vault source.Vault, rec source.RawRecord) error {
	e := v.mapper.Map(rec)

	if _, err := v.main.writer.Write(ctx, v.main.store, v.main.group, e); err != nil {
		return fmt.Errorf("vault %q: %w", vault.Name, err)
	}
	v.report.Entries++
	v.log.Debug(ctx, "entry written", "vault", vault.Name, "title", e.Name())

	if v.totp == nil || e.TOTPSecret() == "" {
		return nil
	}
	if _, err := v.totp.writer.Write(ctx, v.totp.store, v.totp.group, e); err != nil {
		return fmt.Errorf("vault %q (totp): %w", vault.Name, err)
	}
	v.report.TOTPEntries++
	return nil
}
