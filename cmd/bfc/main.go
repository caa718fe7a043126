// Command bfc reads a program written in the toy language and writes
// the Brainfuck it compiles to.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akramoo/bfc/compiler"
	"github.com/akramoo/bfc/config"
	"github.com/akramoo/bfc/fingerprint"
)

// Build-time variables, set via ldflags.
var (
	Version   string = "dev"
	BuildTime string = "unknown"
	GitCommit string = "unknown"
)

var (
	configPath       string
	debug            bool
	printFingerprint bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bfc <source-file>",
	Short: "Compile a toy imperative program to Brainfuck",
	Long: `bfc compiles a small imperative language - let bindings, print,
if, and while - to a Brainfuck program that produces the same output.`,
	Args: cobra.ExactArgs(1),
	RunE: compileCommand,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bfc %s\n", Version)
		fmt.Printf("Built: %s\n", BuildTime)
		fmt.Printf("Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a tunables JSON file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "print the recorded primitive-operation trace to stderr")
	rootCmd.PersistentFlags().BoolVar(&printFingerprint, "fingerprint", false, "print the program's determinism fingerprint to stderr")

	rootCmd.AddCommand(versionCmd)
}

func compileCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	c := compiler.New(string(source))
	c.SetConfig(cfg)

	out, err := c.Compile()
	if err != nil {
		return fmt.Errorf("error compiling %s: %w", path, err)
	}

	if debug {
		for _, op := range c.Trace() {
			fmt.Fprintln(os.Stderr, op)
		}
	}

	if printFingerprint {
		sum, err := fingerprint.Of(c.Program())
		if err != nil {
			return fmt.Errorf("error computing fingerprint: %w", err)
		}
		fmt.Fprintln(os.Stderr, hex.EncodeToString(sum[:]))
	}

	fmt.Print(out)
	return nil
}
