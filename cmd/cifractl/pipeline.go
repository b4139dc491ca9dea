package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/RowanDark/cifra/internal/cipher"
	"github.com/RowanDark/cifra/internal/logging"
)

// parseSteps parses "op[:name=value[,name=value]][;op...]" into a pipeline.
// Integer-looking values become ints. The pipeline is reversible when every
// step has an inverse.
func parseSteps(steps string) (*cipher.Pipeline, error) {
	p := &cipher.Pipeline{Reversible: true}
	for _, raw := range strings.Split(steps, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, rawParams, _ := strings.Cut(raw, ":")
		step := cipher.OperationConfig{Name: strings.TrimSpace(name)}
		if rawParams != "" {
			step.Parameters = cipher.Params{}
			for _, kv := range strings.Split(rawParams, ",") {
				k, v, ok := strings.Cut(kv, "=")
				k, v = strings.TrimSpace(k), strings.TrimSpace(v)
				if !ok || k == "" {
					return nil, fmt.Errorf("step %q: parameter %q is not name=value", step.Name, kv)
				}
				if n, err := strconv.Atoi(v); err == nil {
					step.Parameters[k] = n
				} else {
					step.Parameters[k] = v
				}
			}
		}
		op, ok := cipher.GetOperation(step.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", cipher.ErrUnknownOperation, step.Name)
		}
		if _, ok := op.Reverse(); !ok {
			p.Reversible = false
		}
		p.Operations = append(p.Operations, step)
	}
	if len(p.Operations) == 0 {
		return nil, fmt.Errorf("pipeline has no steps")
	}
	return p, nil
}

func (c *cli) recipes() (*cipher.RecipeManager, error) {
	rm := cipher.NewRecipeManager(c.cfg.RecipesDir)
	if err := rm.LoadRecipes(); err != nil {
		return nil, err
	}
	return rm, nil
}

func (c *cli) runPipeline(args []string) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	steps := fs.String("ops", "", `steps, e.g. "caesar_encrypt:key=3;vigenere_encrypt:keyword=LEMON"`)
	recipeName := fs.String("recipe", "", "run a saved recipe instead of -ops")
	reverse := fs.Bool("reverse", false, "run the inverse pipeline")
	var in inputFlags
	in.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*steps == "") == (*recipeName == "") {
		fmt.Fprintln(c.stderr, "error: exactly one of -ops or -recipe is required")
		return 2
	}

	var p *cipher.Pipeline
	if *steps != "" {
		parsed, err := parseSteps(*steps)
		if err != nil {
			return c.fail(fmt.Errorf("%w: %v", errUsage, err))
		}
		p = parsed
	} else {
		rm, err := c.recipes()
		if err != nil {
			return c.fail(err)
		}
		recipe, ok := rm.GetRecipe(*recipeName)
		if !ok {
			return c.fail(fmt.Errorf("recipe %q not found", *recipeName))
		}
		p = &recipe.Pipeline
	}
	if *reverse {
		reversed, err := p.Reverse()
		if err != nil {
			return c.fail(err)
		}
		p = reversed
	}

	text, source, err := in.read()
	if err != nil {
		return c.fail(err)
	}
	result, err := p.Execute(c.ctx, text)
	if err != nil {
		return c.fail(err)
	}

	names := make([]string, len(p.Operations))
	for i, step := range p.Operations {
		names[i] = step.Name
	}
	c.emit(logging.AuditEvent{
		EventType: logging.EventTransform,
		Metadata:  map[string]any{"pipeline": names, "source": source, "text_length": len(text)},
	})
	fmt.Fprintln(c.stdout, result)
	return 0
}

func (c *cli) runOps(args []string) int {
	fs := flag.NewFlagSet("ops", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	for _, op := range cipher.ListOperations() {
		fmt.Fprintf(c.stdout, "%-18s %-11s %s\n", op.Name(), op.Type(), op.Description())
	}
	return 0
}

func (c *cli) runRecipe(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "recipe subcommand required: save, list, show, search, delete")
		return 2
	}
	switch args[0] {
	case "save":
		return c.runRecipeSave(args[1:])
	case "list":
		return c.runRecipeSearch("", args[1:])
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(c.stderr, "usage: cifractl recipe search <query>")
			return 2
		}
		return c.runRecipeSearch(args[1], args[2:])
	case "show":
		return c.runRecipeShow(args[1:])
	case "delete":
		return c.runRecipeDelete(args[1:])
	default:
		fmt.Fprintf(c.stderr, "unknown recipe subcommand: %s\n", args[0])
		return 2
	}
}

func (c *cli) runRecipeSave(args []string) int {
	fs := flag.NewFlagSet("recipe save", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "recipe name")
	steps := fs.String("ops", "", "pipeline steps, as for 'pipeline -ops'")
	description := fs.String("description", "", "free-form description")
	tags := fs.String("tags", "", "comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*name) == "" || *steps == "" {
		fmt.Fprintln(c.stderr, "error: -name and -ops are required")
		return 2
	}
	p, err := parseSteps(*steps)
	if err != nil {
		return c.fail(fmt.Errorf("%w: %v", errUsage, err))
	}
	rm, err := c.recipes()
	if err != nil {
		return c.fail(err)
	}

	recipe := &cipher.Recipe{Name: strings.TrimSpace(*name), Description: *description, Pipeline: *p}
	if existing, ok := rm.GetRecipe(recipe.Name); ok {
		recipe.CreatedAt = existing.CreatedAt
	}
	for _, tag := range strings.Split(*tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			recipe.Tags = append(recipe.Tags, tag)
		}
	}
	if err := rm.SaveRecipe(recipe); err != nil {
		return c.fail(err)
	}
	c.emit(logging.AuditEvent{
		EventType: logging.EventRecipeSaved,
		Metadata:  map[string]any{"name": recipe.Name, "steps": len(p.Operations)},
	})
	fmt.Fprintf(c.stdout, "saved recipe %s\n", recipe.Name)
	return 0
}

func (c *cli) runRecipeSearch(query string, args []string) int {
	fs := flag.NewFlagSet("recipe list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rm, err := c.recipes()
	if err != nil {
		return c.fail(err)
	}
	for _, recipe := range rm.SearchRecipes(query) {
		fmt.Fprintf(c.stdout, "%-20s %d steps  %s\n", recipe.Name, len(recipe.Pipeline.Operations), recipe.Description)
	}
	return 0
}

func (c *cli) runRecipeShow(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "usage: cifractl recipe show <name>")
		return 2
	}
	rm, err := c.recipes()
	if err != nil {
		return c.fail(err)
	}
	if err := rm.ExportYAML(args[0], c.stdout); err != nil {
		return c.fail(err)
	}
	return 0
}

func (c *cli) runRecipeDelete(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "usage: cifractl recipe delete <name>")
		return 2
	}
	rm, err := c.recipes()
	if err != nil {
		return c.fail(err)
	}
	if _, ok := rm.GetRecipe(args[0]); !ok {
		return c.fail(fmt.Errorf("recipe %q not found", args[0]))
	}
	if err := rm.DeleteRecipe(args[0]); err != nil {
		return c.fail(err)
	}
	c.emit(logging.AuditEvent{EventType: logging.EventRecipeDeleted, Metadata: map[string]any{"name": args[0]}})
	fmt.Fprintf(c.stdout, "deleted recipe %s\n", args[0])
	return 0
}
