package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vk/ftmpl/internal/app"
	"github.com/vk/ftmpl/internal/codegen"
	"github.com/vk/ftmpl/internal/source"
	"gopkg.in/yaml.v3"
)

const stdinName = "<stdin>"

func (c *command) convertCommand() *cobra.Command {
	var (
		input, output string
		format        string
		opts          codegen.GoOptions
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Compile a template document and write it in another form",
		Long: `convert compiles one template document and writes it as Go source
(the default), canonical template text, or a YAML, JSON, msgpack or debug
dump of its compiled units.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := codegen.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			doc, err := readDocument(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			mod, err := a.Compile(cmd.Context(), doc)
			if err != nil {
				return c.failed(err)
			}

			if output == "" || output == "-" {
				if err := codegen.Write(c.outW, mod, f, opts); err != nil {
					return c.failed(err)
				}
			} else if err := writeOutput(output, func(w io.Writer) error {
				return codegen.Write(w, mod, f, opts)
			}); err != nil {
				return c.failed(err)
			}
			a.Logger().Debug("Template converted.", "input", doc.Path, "format", f, "units", len(mod.Units))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&input, "input", "i", "", "Template file to read (default: stdin).")
	fl.StringVarP(&output, "output", "o", "", "File to write (default: stdout).")
	fl.StringVarP(&format, "format", "f", string(codegen.FormatGo), "Output format: "+formatNames()+".")
	fl.StringVar(&opts.Package, "package", "", "Package name of generated Go code.")
	fl.StringVar(&opts.ImportPath, "import-path", codegen.DefaultImportPath, "Import path of the ftmpl package in generated Go code.")
	return cmd
}

func formatNames() string {
	names := make([]string, len(codegen.Formats))
	for i, f := range codegen.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func readDocument(path string, stdin io.Reader) (*source.Document, error) {
	if path == "" || path == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return source.New(stdinName, string(text)), nil
	}
	return source.Read(path)
}

func (c *command) renderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render MODULE UNIT [ARG | NAME=ARG]...",
		Short: "Render one unit of a template module",
		Long: `render resolves MODULE in the search paths and calls UNIT with the given
arguments. Arguments are HCL expressions such as 3, "text" or [1, 2]; anything
that does not parse is passed as a string. NAME=ARG binds by name.`,
		Args: usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.ParseArgs(args[2:])
			if err != nil {
				return usageError(err)
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Render(cmd.Context(), args[0], args[1], parsed)
			if err != nil {
				return c.failed(err)
			}
			fmt.Fprint(c.outW, out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(c.outW)
			}
			return nil
		},
	}
}

func (c *command) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Compile and link template files and report errors",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ok := color.New(color.FgGreen).SprintFunc()
			bad := color.New(color.FgRed, color.Bold).SprintFunc()
			failed := 0
			for _, res := range a.Check(cmd.Context(), args) {
				if res.Err != nil {
					failed++
					fmt.Fprintf(c.outW, "%s %s\n", bad("FAIL"), res.Path)
					c.printError(res.Err)
					continue
				}
				fmt.Fprintf(c.outW, "%s   %s (%d units)\n", ok("ok"), res.Path, len(res.Module.Units()))
			}
			if failed > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d files failed", failed, len(args))}
			}
			return nil
		},
	}
}

func (c *command) listCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the modules and units found in the search paths",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" && format != "yaml" {
				return usageError(fmt.Errorf("unknown format %q: must be one of text, json, yaml", format))
			}
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			modules, err := a.List(cmd.Context())
			if err != nil {
				return c.failed(err)
			}
			switch format {
			case "json":
				enc := json.NewEncoder(c.outW)
				enc.SetIndent("", "  ")
				return enc.Encode(modules)
			case "yaml":
				enc := yaml.NewEncoder(c.outW)
				enc.SetIndent(2)
				if err := enc.Encode(modules); err != nil {
					return err
				}
				return enc.Close()
			}
			printModules(c.outW, modules)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml.")
	return cmd
}

func printModules(w io.Writer, modules []app.ModuleInfo) {
	name := color.New(color.Bold).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	for _, m := range modules {
		if m.Error != "" {
			fmt.Fprintf(w, "%s %s\n", name(m.Name), bad("error: "+m.Error))
			continue
		}
		fmt.Fprintln(w, name(m.Name))
		for _, u := range m.Units {
			fmt.Fprintf(w, "  %s\n", u.Signature)
		}
	}
}

func (c *command) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve template renders over HTTP",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.Config().Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from config).")
	return cmd
}

// writeOutput creates path and writes it with write. The close error is
// returned when the write itself succeeded.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return write(file)
}
