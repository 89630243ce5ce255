package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jward/lineage/internal/logger"
	"github.com/jward/lineage/internal/runtime"
	"github.com/jward/lineage/scripts"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Evaluate Risor scripts against manifest categories",
}

var scriptEvalCmd = &cobra.Command{
	Use:   "eval <file> <label> <expr>",
	Short: "Evaluate an inline expression",
	Long: "Builds the manifest <file> and evaluates <expr> with the globals of category <label>. " +
		"Manifest properties are readable through prop(name).",
	Args: cobra.ExactArgs(3),
	RunE: runScriptEval,
}

var scriptRunCmd = &cobra.Command{
	Use:   "run <file> <label> <script>",
	Short: "Evaluate a script from the scripts directory",
	Args:  cobra.ExactArgs(3),
	RunE:  runScriptRun,
}

var scriptKeyCmd = &cobra.Command{
	Use:   "key <file> <label> <name>",
	Short: "Resolve a built-in computed key",
	Long: "Builds the manifest <file> and resolves the built-in key script <name> on category <label>. " +
		"Unlike a stored property, the value is computed per category.",
	Args: cobra.ExactArgs(3),
	RunE: runScriptKey,
}

func init() {
	scriptCmd.AddCommand(scriptEvalCmd)
	scriptCmd.AddCommand(scriptRunCmd)
	scriptCmd.AddCommand(scriptKeyCmd)
}

func runScriptEval(cmd *cobra.Command, args []string) error {
	return evalOnCategory("script eval", args, false)
}

func runScriptRun(cmd *cobra.Command, args []string) error {
	return evalOnCategory("script run", args, true)
}

func runScriptKey(cmd *cobra.Command, args []string) error {
	const command = "script key"
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	c, err := lookupLabel(b.Graph, args[1])
	if err != nil {
		return outputError(command, err)
	}
	path, err := scripts.KeyPath(args[2])
	if err != nil {
		return outputError(command, err)
	}

	rt := runtime.NewRuntime("",
		runtime.WithRuntimeFS(scripts.FS),
		runtime.WithKeys(b.Keys()...),
		runtime.WithLogger(logger.Base()),
	)
	k, err := rt.KeyFromScript(context.Background(), args[2], path)
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: toCLIProperty(c, k)})
}

func evalOnCategory(command string, args []string, fromFile bool) error {
	b, err := loadManifest(args[0])
	if err != nil {
		return outputError(command, err)
	}
	c, err := lookupLabel(b.Graph, args[1])
	if err != nil {
		return outputError(command, err)
	}

	rt := runtime.NewRuntime(cfg.Scripts.Dir,
		runtime.WithKeys(b.Keys()...),
		runtime.WithLogger(logger.Base()),
	)
	ctx := context.Background()
	var v any
	if fromFile {
		v, err = rt.EvalScript(ctx, args[2], c)
	} else {
		v, err = rt.Eval(ctx, args[2], c)
	}
	if err != nil {
		return outputError(command, err)
	}
	return outputResult(CLIResult{Command: command, Results: CLIValue{
		Category:   c.String(),
		Expression: args[2],
		Value:      v,
	}})
}
