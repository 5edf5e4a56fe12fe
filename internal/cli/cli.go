// Package cli implements the command-line interface of parquet-pagedump.
package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/parquet-go/parquet-decoding"
	"github.com/parquet-go/parquet-decoding/deprecated"
	"github.com/parquet-go/parquet-decoding/encoding"
	"github.com/parquet-go/parquet-decoding/format"
)

const usage = `usage: parquet-pagedump -type <type> -encoding <encoding> -count <n> [options] <page file>
       parquet-pagedump -type <type> -chunk [options] <column chunk file>`

type options struct {
	typ         format.Type
	encoding    format.Encoding
	compression format.CompressionCodec
	count       int
	width       int
	logical     string
	output      string
	dictionary  string
	dictionaryN int
	chunk       bool
	optional    bool
	page        string
}

// Run executes the CLI with the given arguments, writing decoded values to
// stdout and logs to stderr.
func Run(args []string, stdout, stderr io.Writer) error {
	cmd := newCommand(stdout, stderr)
	cmd.SetArgs(normalizeArgs(args))
	return cmd.Execute()
}

// normalizeArgs rewrites single dash long flags like -type to the double dash
// form expected by cobra. Negative numbers are left untouched. The returned
// slice is never nil, so cobra does not fall back to os.Args.
func normalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args))
	for _, arg := range args {
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' && (arg[1] < '0' || arg[1] > '9') {
			arg = "-" + arg
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

type flags struct {
	typ         string
	encoding    string
	compression string
	count       int
	width       int
	logical     string
	output      string
	dictionary  string
	dictionaryN int
	chunk       bool
	optional    bool
	verbose     bool
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "parquet-pagedump [flags] <page file>",
		Short:         "Decode the values of a raw parquet page or column chunk",
		Long:          usage,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(&f, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.StringVar(&f.typ, "type", "", "physical type of the values (BOOLEAN, INT32, INT64, INT96, FLOAT, DOUBLE, BYTE_ARRAY, FIXED_LEN_BYTE_ARRAY)")
	fs.StringVar(&f.encoding, "encoding", "PLAIN", "encoding of the page")
	fs.StringVar(&f.compression, "compression", "UNCOMPRESSED", "compression codec of the page")
	fs.IntVar(&f.count, "count", -1, "number of values in the page")
	fs.IntVar(&f.width, "width", 0, "width of FIXED_LEN_BYTE_ARRAY values")
	fs.StringVar(&f.logical, "logical", "", "logical type used to render values (uuid)")
	fs.StringVar(&f.output, "output", "table", "output format (table, tsv)")
	fs.StringVar(&f.dictionary, "dictionary", "", "file holding the PLAIN dictionary page of dictionary-encoded pages")
	fs.IntVar(&f.dictionaryN, "dictionary-count", 0, "number of values in the dictionary page")
	fs.BoolVar(&f.chunk, "chunk", false, "read a column chunk made of page headers followed by page contents")
	fs.BoolVar(&f.optional, "optional", false, "the column is optional, pages carry definition levels")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logs")
	return cmd
}

func execute(f *flags, args []string, stdout, stderr io.Writer) error {
	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()

	if f.typ == "" {
		return errors.New(usage + "\n-type is required")
	}
	if f.count < 0 && !f.chunk {
		return errors.New(usage + "\n-count is required")
	}
	if len(args) != 1 {
		return errors.New(usage + "\nexactly one page file is required")
	}

	opts := options{
		count:       f.count,
		width:       f.width,
		logical:     f.logical,
		output:      f.output,
		dictionary:  f.dictionary,
		dictionaryN: f.dictionaryN,
		chunk:       f.chunk,
		optional:    f.optional,
		page:        args[0],
	}
	var err error
	if opts.typ, err = format.ParseType(f.typ); err != nil {
		return err
	}
	if opts.encoding, err = format.ParseEncoding(f.encoding); err != nil {
		return err
	}
	if opts.compression, err = format.ParseCompressionCodec(f.compression); err != nil {
		return err
	}
	switch opts.logical {
	case "":
	case "uuid":
		if opts.typ != format.FixedLenByteArray || opts.width != 16 {
			return errors.New("-logical uuid requires -type FIXED_LEN_BYTE_ARRAY and -width 16")
		}
	default:
		return fmt.Errorf("unsupported logical type: %s", opts.logical)
	}
	if opts.output != "table" && opts.output != "tsv" {
		return fmt.Errorf("unsupported output format: %s", opts.output)
	}

	return run(&opts, stdout, logger)
}

func run(opts *options, stdout io.Writer, logger zerolog.Logger) error {
	codec, err := parquet.LookupCompressionCodec(opts.compression)
	if err != nil {
		return err
	}
	page, err := os.ReadFile(opts.page)
	if err != nil {
		return err
	}
	var dictionary []byte
	if opts.dictionary != "" {
		if dictionary, err = os.ReadFile(opts.dictionary); err != nil {
			return err
		}
	}

	column := &encoding.Column{
		Path:       []string{strings.TrimSuffix(filepath.Base(opts.page), filepath.Ext(opts.page))},
		Type:       opts.typ,
		TypeLength: opts.width,
	}
	if opts.optional {
		column.MaxDefinitionLevel = 1
	}
	readerOptions := []parquet.ReaderOption{
		parquet.WithCodec(codec),
		parquet.WithLogger(logger),
	}
	logger.Debug().
		Str("file", opts.page).
		Int("size", len(page)).
		Stringer("encoding", opts.encoding).
		Bool("chunk", opts.chunk).
		Msg("decoding page")

	var rows [][]string
	switch opts.typ {
	case format.Boolean:
		rows, err = decode(column, opts, page, dictionary, readerOptions, strconv.FormatBool)
	case format.Int32:
		rows, err = decode(column, opts, page, dictionary, readerOptions, func(v int32) string { return strconv.FormatInt(int64(v), 10) })
	case format.Int64:
		rows, err = decode(column, opts, page, dictionary, readerOptions, func(v int64) string { return strconv.FormatInt(v, 10) })
	case format.Int96:
		rows, err = decode(column, opts, page, dictionary, readerOptions, deprecated.Int96.String)
	case format.Float:
		rows, err = decode(column, opts, page, dictionary, readerOptions, func(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) })
	case format.Double:
		rows, err = decode(column, opts, page, dictionary, readerOptions, func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) })
	case format.ByteArray:
		rows, err = decode(column, opts, page, dictionary, readerOptions, func(v encoding.ByteArray) string { return strconv.Quote(string(v)) })
	case format.FixedLenByteArray:
		render := func(v encoding.FixedLenByteArray) string { return hex.EncodeToString(v) }
		if opts.logical == "uuid" {
			render = func(v encoding.FixedLenByteArray) string {
				id, err := uuid.FromBytes(v)
				if err != nil {
					return hex.EncodeToString(v)
				}
				return id.String()
			}
		}
		rows, err = decode(column, opts, page, dictionary, readerOptions, render)
	default:
		err = fmt.Errorf("unsupported type: %s", opts.typ)
	}
	if err != nil {
		return err
	}
	return write(stdout, opts.output, rows)
}

func decode[T encoding.Kind](column *encoding.Column, opts *options, page, dictionary []byte, readerOptions []parquet.ReaderOption, render func(T) string) ([][]string, error) {
	reader, err := parquet.NewColumnReader[T](column, readerOptions...)
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	if dictionary != nil {
		if err := reader.ReadDictionaryPage(opts.dictionaryN, dictionary); err != nil {
			return nil, err
		}
	}

	var values []T
	var validity []bool
	if opts.chunk {
		if values, validity, err = reader.ReadColumnChunk(page); err != nil {
			return nil, err
		}
	} else {
		values = make([]T, opts.count)
		result, err := reader.ReadDataPage(parquet.DataPage{
			NumValues: opts.count,
			Encoding:  opts.encoding,
			Data:      page,
		}, values)
		if err != nil {
			return nil, err
		}
		validity = make([]bool, len(values))
		for i := range validity {
			validity[i] = result.Valid(i)
		}
	}

	rows := make([][]string, len(values))
	for i, v := range values {
		value := "NULL"
		if validity[i] {
			value = render(v)
		}
		rows[i] = []string{strconv.Itoa(i), value}
	}
	return rows, nil
}

func write(w io.Writer, output string, rows [][]string) error {
	if output == "tsv" {
		for _, row := range rows {
			if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Index", "Value")
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
