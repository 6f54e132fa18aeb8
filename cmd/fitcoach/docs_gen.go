// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/dotsetgreg/fitcoach/pkg/coach"
	"github.com/dotsetgreg/fitcoach/pkg/config"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/dotsetgreg/fitcoach/pkg/video"
	"github.com/spf13/cobra"
	cobraDoc "github.com/spf13/cobra/doc"
)

func newDocsCommand(rootFactory func() *cobra.Command) *cobra.Command {
	docsRoot := &cobra.Command{
		Use:    "docs",
		Short:  "Internal docs maintenance commands",
		Hidden: true,
	}

	var (
		outputDir string
		checkOnly bool
	)

	gen := &cobra.Command{
		Use:   "generate",
		Short: "Generate reference docs from commands, config and conversation routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputDir) == "" {
				return fmt.Errorf("--output must not be empty")
			}
			return generateDocumentation(rootFactory, outputDir, checkOnly)
		},
	}
	gen.Flags().StringVar(&outputDir, "output", "docs", "Docs directory root")
	gen.Flags().BoolVar(&checkOnly, "check", false, "Fail if generated docs are out of date")

	docsRoot.AddCommand(gen)
	return docsRoot
}

func generateDocumentation(rootFactory func() *cobra.Command, outputDir string, checkOnly bool) error {
	tmpDir, err := os.MkdirTemp("", "fitcoach-docs-gen-*")
	if err != nil {
		return fmt.Errorf("create temp docs dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	generatedRoots, err := writeGeneratedReferences(rootFactory, tmpDir)
	if err != nil {
		return err
	}

	if checkOnly {
		for _, rel := range generatedRoots {
			if err := comparePath(filepath.Join(tmpDir, rel), filepath.Join(outputDir, rel), rel); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rel := range generatedRoots {
		src := filepath.Join(tmpDir, rel)
		dst := filepath.Join(outputDir, rel)
		if err := copyPath(src, dst); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

func writeGeneratedReferences(rootFactory func() *cobra.Command, outDir string) ([]string, error) {
	cliRoot := rootFactory()
	markCommandsForDocgen(cliRoot)

	cliDir := filepath.Join(outDir, "reference", "cli")
	if err := os.MkdirAll(cliDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cli docs dir: %w", err)
	}
	prepender := func(filename string) string {
		title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		title = strings.ReplaceAll(title, "_", " ")
		return fmt.Sprintf("# %s\n\n", strings.TrimSpace(title))
	}
	linkHandler := func(name string) string {
		return name
	}
	if err := cobraDoc.GenMarkdownTreeCustom(cliRoot, cliDir, prepender, linkHandler); err != nil {
		return nil, fmt.Errorf("generate cli markdown docs: %w", err)
	}

	manDir := filepath.Join(outDir, "reference", "man")
	if err := os.MkdirAll(manDir, 0o755); err != nil {
		return nil, fmt.Errorf("create man docs dir: %w", err)
	}
	header := &cobraDoc.GenManHeader{
		Title:   "FITCOACH",
		Section: "1",
		Source:  "fitcoach",
	}
	if err := cobraDoc.GenManTree(cliRoot, header, manDir); err != nil {
		return nil, fmt.Errorf("generate man pages: %w", err)
	}

	configRef, err := buildConfigReferenceMarkdown()
	if err != nil {
		return nil, err
	}
	if err := writeTextFile(filepath.Join(outDir, "reference", "config.md"), configRef); err != nil {
		return nil, err
	}

	if err := writeTextFile(filepath.Join(outDir, "reference", "conversation.md"), buildConversationReferenceMarkdown()); err != nil {
		return nil, err
	}

	return []string{
		filepath.Join("reference", "cli"),
		filepath.Join("reference", "man"),
		filepath.Join("reference", "config.md"),
		filepath.Join("reference", "conversation.md"),
	}, nil
}

func markCommandsForDocgen(cmd *cobra.Command) {
	cmd.DisableAutoGenTag = true
	for _, child := range cmd.Commands() {
		if child.Name() == "docs" {
			continue
		}
		markCommandsForDocgen(child)
	}
}

// buildConversationReferenceMarkdown documents routing priority, profile
// fields and video categories from the live tables.
func buildConversationReferenceMarkdown() string {
	controller := coach.NewController(profile.NewMemoryStore(), nil, nil, nil)

	var b strings.Builder
	b.WriteString("# Conversation Reference\n\n")
	b.WriteString("Generated from `pkg/coach`, `pkg/profile` and `pkg/video`.\n\n")
	b.WriteString("## Routes\n\nThe first matching route answers a message.\n\n")
	for i, name := range controller.Routes() {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, name)
	}
	b.WriteString("\n## Profile fields\n\n")
	b.WriteString("| Field | Label | Prompt |\n| --- | --- | --- |\n")
	for _, f := range profile.CompletenessFields {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", f, profile.FieldLabel(f), escapePipes(profile.FieldPrompt(f)))
	}
	b.WriteString("\n## Tones\n\nAny other stored value is rendered as the first tone.\n\n")
	for _, t := range tone.All() {
		fmt.Fprintf(&b, "- `%s` (%s)\n", t, t.Label())
	}
	b.WriteString("\n## Home workout categories\n\n")
	for _, c := range video.Categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	return b.String()
}

func writeTextFile(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func copyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst)
	}
	_ = os.RemoveAll(dst)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func comparePath(src, dst, rel string) error {
	srcFiles, err := listFiles(src)
	if err != nil {
		return fmt.Errorf("generated path missing: %s (%w)", rel, err)
	}
	dstFiles, err := listFiles(dst)
	if err != nil {
		return fmt.Errorf("docs out of date: missing %s", rel)
	}
	if strings.Join(srcFiles, "\n") != strings.Join(dstFiles, "\n") {
		return fmt.Errorf("docs out of date: file set mismatch under %s", rel)
	}
	for _, name := range srcFiles {
		srcBytes, err := os.ReadFile(filepath.Join(src, name))
		if err != nil {
			return err
		}
		dstBytes, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			return err
		}
		if !bytes.Equal(srcBytes, dstBytes) {
			return fmt.Errorf("docs out of date: %s changed; run `fitcoach docs generate`", filepath.Join(rel, name))
		}
	}
	return nil
}

// listFiles returns the sorted relative paths under root. A plain file is
// listed as ".".
func listFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{"."}, nil
	}
	files := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

type configFieldRow struct {
	Path    string
	Type    string
	Env     string
	Default string
}

func buildConfigReferenceMarkdown() (string, error) {
	defaults, err := flattenConfigDefaults()
	if err != nil {
		return "", err
	}

	rows := []configFieldRow{}
	collectConfigRows(reflect.TypeOf(config.Config{}), "", defaults, &rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	var b strings.Builder
	b.WriteString("# Config Reference\n\n")
	b.WriteString("Generated from `pkg/config/config.go` and `config.DefaultConfig()`.\n\n")
	b.WriteString("| Key | Type | Env Var | Default |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, row := range rows {
		b.WriteString("| `" + escapePipes(row.Path) + "` | `" + escapePipes(row.Type) + "` | `" + escapePipes(valueOr(row.Env, "-")) + "` | `" + escapePipes(valueOr(row.Default, "-")) + "` |\n")
	}
	return b.String(), nil
}

func collectConfigRows(t reflect.Type, prefix string, defaults map[string]string, rows *[]configFieldRow) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		jsonTag := strings.TrimSpace(strings.Split(f.Tag.Get("json"), ",")[0])
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		path := jsonTag
		if prefix != "" {
			path = prefix + "." + jsonTag
		}

		if f.Type.Kind() == reflect.Struct {
			collectConfigRows(f.Type, path, defaults, rows)
			continue
		}

		*rows = append(*rows, configFieldRow{
			Path:    path,
			Type:    friendlyType(f.Type),
			Env:     strings.TrimSpace(f.Tag.Get("env")),
			Default: defaults[path],
		})
	}
}

func flattenConfigDefaults() (map[string]string, error) {
	data, err := json.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	out := map[string]string{}
	flattenMapValues("", root, out)
	return out, nil
}

func flattenMapValues(prefix string, v any, out map[string]string) {
	if typed, ok := v.(map[string]any); ok {
		for k, child := range typed {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenMapValues(next, child, out)
		}
		return
	}
	encoded, _ := json.Marshal(v)
	out[prefix] = string(encoded)
}

func friendlyType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Slice:
		return "array<" + friendlyType(t.Elem()) + ">"
	default:
		return t.String()
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
