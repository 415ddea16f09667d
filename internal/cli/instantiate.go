package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/prefab"
	"github.com/roach88/scenekit/internal/store"
)

// InstantiateOptions holds flags for the instantiate command.
type InstantiateOptions struct {
	*RootOptions
	Variant string
	ID      string
	Parent  string   // attach under this node of the default scene
	Params  []string // key=value pairs
	DB      string
}

// InstantiateResult is the created instance, and its rendered tree when it
// was attached to a scene.
type InstantiateResult struct {
	Instance *ir.PrefabInstance `json:"instance"`
	Hash     string             `json:"hash"`
	Render   *canvas.RenderNode `json:"render,omitempty"`
	Stored   bool               `json:"stored,omitempty"`
}

// NewInstantiateCommand creates the instantiate command.
func NewInstantiateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InstantiateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "instantiate <manifest> <prefabId>",
		Short: "Instantiate a prefab",
		Long: `Run a prefab through the instantiation pipeline and print the instance.

Parameter values are parsed as YAML scalars, so --param count=3 is a number
and --param title=Hello a string. Values failing the prefab's validation
expression are skipped with a warning.

Examples:
  scenekit instantiate site.cue card --param title=Hello
  scenekit instantiate site.cue card --variant compact --id hero
  scenekit instantiate site.cue card --parent home --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstantiate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Variant, "variant", "", "variant id")
	cmd.Flags().StringVar(&opts.ID, "id", "", "instance id (generated when empty)")
	cmd.Flags().StringVar(&opts.Parent, "parent", "", "attach under this node of the default scene and render it")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to store the instance in")

	return cmd
}

func runInstantiate(opts *InstantiateOptions, manifestPath, prefabID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	params, err := ParseParams(opts.Params)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err.Error())
	}

	loaded, err := LoadManifest(manifestPath)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	c, err := canvas.New(loaded.Manifest, canvas.WithLogger(slog.Default()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	defer c.Close()

	inst, err := c.Instantiate(prefabID, prefab.Options{
		VariantID:  opts.Variant,
		CustomID:   opts.ID,
		Parameters: params,
	}, opts.Parent)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePrefab, err.Error())
	}

	hash, err := ir.NodeHash(inst.Instance)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	result := InstantiateResult{Instance: inst, Hash: hash}
	if opts.Parent != "" {
		if root := c.Render(); root != nil {
			result.Render = root.Find(inst.ID)
		}
	}

	if opts.DB != "" {
		ctx := contextOf(cmd)
		st, clock, err := openStore(ctx, opts.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		defer st.Close()
		if err := st.WriteInstance(ctx, store.InstanceFromPrefab(*inst, clock.Next())); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		result.Stored = true
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Instantiated %s as %s", prefabID, inst.ID)
	if inst.VariantID != "" {
		fmt.Fprintf(formatter.Writer, " (variant %s)", inst.VariantID)
	}
	fmt.Fprintf(formatter.Writer, " [%s]\n", hash[:12])
	if result.Render != nil {
		writeTree(formatter.Writer, result.Render, 1)
	} else {
		writeNode(formatter, inst.Instance, 1)
	}
	if result.Stored {
		fmt.Fprintf(formatter.Writer, "stored in %s\n", opts.DB)
	}
	return nil
}

func writeNode(formatter *OutputFormatter, n *ir.Node, depth int) {
	line := strings.Repeat("  ", depth) + n.Kind.String() + " #" + n.ID
	if n.Content != "" {
		line += fmt.Sprintf(" %q", n.Content)
	}
	if n.IsPrefabRef() {
		line += " -> prefab " + n.PrefabID
	}
	fmt.Fprintln(formatter.Writer, line)
	for _, child := range n.Children {
		writeNode(formatter, child, depth+1)
	}
}

// ParseParams turns key=value pairs into prefab parameters. Values are
// decoded as YAML so numbers, booleans and lists keep their type; integers
// become float64 like every other manifest number.
func ParseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", pair)
		}
		if raw == "" {
			params[key] = ""
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", pair, err)
		}
		params[key] = normalizeNumbers(v)
	}
	return params, nil
}

func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case []any:
		for i, elem := range val {
			val[i] = normalizeNumbers(elem)
		}
		return val
	case map[string]any:
		for k, elem := range val {
			val[k] = normalizeNumbers(elem)
		}
		return val
	default:
		return v
	}
}
