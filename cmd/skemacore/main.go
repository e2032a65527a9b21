// Command skemacore compiles schema descriptions and runs documents
// through them from the shell: `check` compiles a schema, `validate` runs
// documents against it, `emit` validates then serializes to JSON.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	skemacore "github.com/reoring/skemacore"
)

var (
	flagSchema  string
	flagLax     bool
	flagByAlias bool
	flagPretty  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "skemacore",
		Short:         "Schema-driven validation and serialization from the shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(checkCmd(), validateCmd(), emitCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <schema-file>",
		Short: "Compile a schema description (JSON or YAML) and report defects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := loadSchema(args[0])
			if err != nil {
				printSchemaError(err)
				return fmt.Errorf("schema %s does not compile", args[0])
			}
			color.New(color.FgGreen).Fprintf(os.Stderr, "ok: %s compiles\n", args[0])
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <doc-file>...",
		Short: "Validate JSON or YAML documents against a schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(flagSchema)
			if err != nil {
				printSchemaError(err)
				return fmt.Errorf("schema %s does not compile", flagSchema)
			}
			failed := 0
			for _, doc := range args {
				if _, err := validateDoc(s, doc); err != nil {
					printIssues(doc, err)
					failed++
					continue
				}
				color.New(color.FgGreen).Fprintf(os.Stderr, "ok: %s\n", doc)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagSchema, "schema", "s", "", "schema description file (required)")
	cmd.Flags().BoolVar(&flagLax, "lax", false, "apply the lax coercion ladders")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func emitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit <doc-file>",
		Short: "Validate a document and emit its serialized JSON form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(flagSchema)
			if err != nil {
				printSchemaError(err)
				return fmt.Errorf("schema %s does not compile", flagSchema)
			}
			v, err := validateDoc(s, args[0])
			if err != nil {
				printIssues(args[0], err)
				return fmt.Errorf("%s failed validation", args[0])
			}
			out, err := s.SerializeJSON(context.Background(), v, skemacore.SerializeOpt{ByAlias: flagByAlias})
			if err != nil {
				printIssues(args[0], err)
				return fmt.Errorf("%s failed serialization", args[0])
			}
			if flagPretty {
				var buf any
				if json.Unmarshal(out, &buf) == nil {
					if p, err := json.MarshalIndent(buf, "", "  "); err == nil {
						out = p
					}
				}
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagSchema, "schema", "s", "", "schema description file (required)")
	cmd.Flags().BoolVar(&flagLax, "lax", false, "apply the lax coercion ladders")
	cmd.Flags().BoolVar(&flagByAlias, "by-alias", false, "emit record fields under their aliases")
	cmd.Flags().BoolVar(&flagPretty, "pretty", false, "indent the emitted JSON")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func loadSchema(path string) (*skemacore.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isYAMLFile(path) {
		return skemacore.CompileYAML(data)
	}
	return skemacore.CompileJSON(data)
}

func validateDoc(s *skemacore.Schema, path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var opts []skemacore.ValidateOpt
	if flagLax {
		opts = append(opts, skemacore.ValidateOpt{Mode: skemacore.ModeLax})
	}
	ctx := context.Background()
	if isYAMLFile(path) {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return s.Validate(ctx, doc, opts...)
	}
	return s.ValidateJSON(ctx, data, opts...)
}

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func printSchemaError(err error) {
	header := color.New(color.FgRed, color.Bold)
	if se, ok := skemacore.AsSchemaError(err); ok {
		header.Fprintln(os.Stderr, "schema error")
		fmt.Fprintf(os.Stderr, "  at %s: %s (%s)\n", se.Path, se.Message, se.Defect)
		return
	}
	header.Fprintln(os.Stderr, err.Error())
}

func printIssues(doc string, err error) {
	header := color.New(color.FgRed, color.Bold)
	iss, ok := skemacore.AsIssues(err)
	if !ok {
		header.Fprintf(os.Stderr, "%s: %v\n", doc, err)
		return
	}
	header.Fprintf(os.Stderr, "%s: %d issue(s)\n", doc, len(iss))
	kindColor := color.New(color.FgYellow)
	for _, it := range iss {
		fmt.Fprintf(os.Stderr, "  %s  %s  %s\n", it.Loc.Pointer(), kindColor.Sprint(it.Kind), it.Message)
	}
}
