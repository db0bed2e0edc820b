// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/procurectl/internal/attrs"
	"github.com/staranto/procurectl/internal/config"
	"github.com/staranto/procurectl/internal/filters"
)

// Styler returns a style for a single text cell, keyed by the attr output key
// and the rendered value. It is only consulted when color is on.
type Styler func(key string, value string) (lipgloss.Style, bool)

// Options are the rendering choices shared by every listing command.
type Options struct {
	Output string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	Local  bool
	Styler Styler
}

// OptionsFromCommand reads the common output flags.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Output: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Local:  cmd.Bool("local"),
	}
}

// Rows filters, transforms and sorts the dataset found at parent within raw.
// An empty parent means raw itself is the dataset. Each prepare func sees the
// filtered rows before any transformation, which is where derived labels and
// lookups are patched in.
func Rows(raw []byte, al attrs.AttrList, opts Options, parent string, prepare ...func([]map[string]interface{})) []map[string]interface{} {
	dataset := gjson.ParseBytes(raw)
	if parent != "" {
		dataset = dataset.Get(parent)
	}

	// A single object is treated as a one row dataset.
	if dataset.IsObject() {
		dataset = gjson.Parse("[" + dataset.Raw + "]")
	}

	rows := filters.FilterDataset(dataset, al, opts.Filter)

	for _, p := range prepare {
		p(rows)
	}

	if opts.Local {
		for a := range al {
			al[a].TransformSpec += "t"
		}
	}

	for _, row := range rows {
		for _, attr := range al {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)
	return rows
}

// SliceDiceSpit orchestrates filtering, transforming, sorting and rendering
// of a dataset according to the options and attribute specifications.
func SliceDiceSpit(raw []byte, al attrs.AttrList, opts Options, parent string, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Output == "raw" {
		_, err := w.Write(raw)
		return err
	}

	return Render(Rows(raw, al, opts, parent), al, opts, w)
}

// Render emits rows that were already prepared by Rows.
func Render(rows []map[string]interface{}, al attrs.AttrList, opts Options, w io.Writer) error {
	switch opts.Output {
	case "json":
		if rows == nil {
			rows = []map[string]interface{}{}
		}
		jsonOutput, err := json.Marshal(project(rows, al))
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(project(rows, al))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		return TableWriter(rows, al, opts, w)
	}
}

// project drops the attrs that are only there for filtering and sorting.
func project(rows []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out := make(map[string]interface{}, len(al))
		for _, attr := range al.Included() {
			out[attr.OutputKey] = row[attr.OutputKey]
		}
		result = append(result, out)
	}
	return result
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(resultSet []map[string]interface{}, al attrs.AttrList, opts Options, w io.Writer) error {
	if len(resultSet) == 0 {
		return nil
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	included := al.Included()

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(included))
		for _, attr := range included {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	pad, _ := config.GetInt("padding", 0)
	log.Debugf("padding: %v", pad)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if opts.Color && opts.Styler != nil && row >= 0 && row < len(rows) && col < len(included) {
				if s, ok := opts.Styler(included[col].OutputKey, rows[row][col]); ok {
					style = s
				}
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range included {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	var rows [][]string
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t.String())
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		// Whole numbers are printed without a trailing .0, amounts keep their
		// decimals.
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
