// Package main provides the CLI entry point for xlsync.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/xlsync-go/internal/logger"
	"github.com/ukaji3/xlsync-go/pkg/xlsync"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/config"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/output"
)

var version = "dev"

var (
	configPath  string
	logLevel    string
	logEncoding string

	inputPath  string
	mode       string
	worksheet  string
	startCell  string
	properties []string
	title      string

	rangeRef  string
	kind      string
	outPath   string
	pretty    bool
	sheetsDir string
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlsync",
		Short: "Synchronize records with worksheet tables",
		Long: `xlsync writes lists of records as tables of xlsx workbooks and reads
worksheet rows back as records or cell values.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Job file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logEncoding, "log-encoding", "", "Log encoding: json or console")

	root.AddCommand(newPushCmd(), newReadCmd(), newSheetsCmd(), newVersionCmd())
	return root
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [workbook.xlsx]",
		Short: "Write records from a JSON or YAML file to a worksheet",
		Long: `Write records from a JSON or YAML list to a worksheet table.

Modes: create (only if absent), replace (default), update (only if present),
upsert (update or create).

Example:
  xlsync push inventory.xlsx --input items.json --worksheet Items --mode upsert`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPush,
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Records file, .json or .yaml (required)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Synchronization mode: create, replace, update, upsert")
	cmd.Flags().StringVarP(&worksheet, "worksheet", "w", "", "Worksheet name")
	cmd.Flags().StringVar(&startCell, "start", "", "Starting cell of the header row (default: A1)")
	cmd.Flags().StringSliceVar(&properties, "properties", nil, "Columns to write, in order")
	cmd.Flags().StringVar(&title, "title", "", "Workbook title property")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [workbook.xlsx]",
		Short: "Read a worksheet as records or cell values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRead,
	}

	cmd.Flags().StringVarP(&worksheet, "worksheet", "w", "", "Worksheet name (default: first worksheet)")
	cmd.Flags().StringVarP(&rangeRef, "range", "r", "", "Range such as A1:C10 or a defined name (default: used region)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "objects", "What to read: objects, values, contents")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-worksheet output files (reads every worksheet)")
	return cmd
}

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [workbook.xlsx]",
		Short: "List worksheets with their used regions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSheets,
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xlsync %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// setup loads the job configuration, applies flag overrides and configures
// logging. It returns the configuration and the workbook path.
func setup(cmd *cobra.Command, args []string) (*config.File, string, error) {
	var (
		cfg *config.File
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-encoding") {
		cfg.Log.Encoding = logEncoding
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("worksheet") {
		cfg.Worksheet = worksheet
	}
	if flags.Changed("start") {
		cfg.StartingCell = startCell
	}
	if flags.Changed("properties") {
		cfg.Properties = properties
	}
	if flags.Changed("range") {
		cfg.Range = rangeRef
	}
	if flags.Changed("title") {
		cfg.Document.Title = title
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, "", err
	}

	path := cfg.Workbook
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, "", errors.New("no workbook given")
	}
	return cfg, path, nil
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, path, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	syncMode, err := cfg.SyncMode()
	if err != nil {
		return err
	}
	push, err := cfg.PushConfig()
	if err != nil {
		return err
	}

	records, err := readRecords(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", inputPath)
	}

	rows := recordRows(records, push.ObjectProperties)
	objects := make([]interface{}, len(rows))
	for i, r := range rows {
		objects[i] = r
	}
	if push.Worksheet == "" {
		push.Worksheet = trimExt(filepath.Base(inputPath))
	}

	res, err := xlsync.Synchronize(path, objects, xlsync.SyncOptions{
		Mode:   syncMode,
		Config: push,
		Logger: logger.Get(),
	})
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return output.WriteJSON(cmd.OutOrStdout(), res, false)
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, path, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := xlsync.QueryOptions{Logger: logger.Get()}

	if sheetsDir != "" {
		return writeSheetFiles(path, sheetsDir, opts)
	}

	req, err := newRequest(kind, cfg.Worksheet, cfg.Range)
	if err != nil {
		return err
	}
	res, err := xlsync.Query(path, req, opts)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	if outPath != "" {
		if err := output.WriteJSONFile(outPath, res, pretty); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return output.WriteJSON(cmd.OutOrStdout(), res, pretty)
}

func runSheets(cmd *cobra.Command, args []string) error {
	_, path, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	infos, err := xlsync.Sheets(path, xlsync.QueryOptions{Logger: logger.Get()})
	if err != nil {
		return fmt.Errorf("listing worksheets failed: %w", err)
	}
	return output.WriteJSON(cmd.OutOrStdout(), infos, pretty)
}

func newRequest(kind, worksheet, rng string) (xlsync.Request, error) {
	switch kind {
	case "objects":
		return xlsync.ObjectRequest{Worksheet: worksheet, Range: rng}, nil
	case "values":
		return xlsync.CellValuesRequest{Worksheet: worksheet, Range: rng}, nil
	case "contents":
		return xlsync.CellContentsRequest{Worksheet: worksheet, Range: rng}, nil
	default:
		return nil, fmt.Errorf("invalid kind: %s (must be objects, values, or contents)", kind)
	}
}

// writeSheetFiles writes one JSON file per worksheet into dir.
func writeSheetFiles(path, dir string, opts xlsync.QueryOptions) error {
	infos, err := xlsync.Sheets(path, opts)
	if err != nil {
		return err
	}

	for _, info := range infos {
		req, err := newRequest(kind, info.Name, "")
		if err != nil {
			return err
		}
		res, err := xlsync.Query(path, req, opts)
		if err != nil {
			return err
		}
		if err := output.WriteJSONFile(filepath.Join(dir, info.Name+".json"), res, pretty); err != nil {
			return err
		}
		opts.Logger.Debug("worksheet written", zap.String("worksheet", info.Name))
	}
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
