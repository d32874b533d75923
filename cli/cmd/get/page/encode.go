package page

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	dto "github.com/prometheus/client_model/go"
	"sigs.k8s.io/yaml"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

func encodePage(output string, page *pages.Page) (io.Reader, int64, error) {
	var data []byte
	var err error
	switch output {
	case "json":
		data, err = json.Marshal(page)
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(page)
	case "table":
		data, err = encodePageAsTable(page)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("encoding page %s as %q failed: %w", page.Path, output, err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func encodePageAsTable(page *pages.Page) ([]byte, error) {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Path", "Title", "Properties", "Digest", "Repository"})
	t.AppendRow(table.Row{page.Path, page.Title, properties(page.Properties), page.Digest, page.Repository})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	if len(page.Content) > 0 {
		buf.WriteByte('\n')
		buf.Write(page.Content)
		if !bytes.HasSuffix(page.Content, []byte{'\n'}) {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

func properties(props map[string]string) string {
	var b strings.Builder
	for i, k := range slices.Sorted(maps.Keys(props)) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(props[k])
	}
	return b.String()
}

// encodeStats renders gathered lookup metrics as a table with one row per
// series.
func encodeStats(families []*dto.MetricFamily) []byte {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Metric", "Labels", "Value"})
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			t.AppendRow(table.Row{family.GetName(), labels(metric.GetLabel()), value(family.GetType(), metric)})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	buf.WriteByte('\n')
	t.Render()
	return buf.Bytes()
}

func labels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		parts = append(parts, pair.GetName()+"="+pair.GetValue())
	}
	return strings.Join(parts, " ")
}

func value(typ dto.MetricType, metric *dto.Metric) string {
	switch typ {
	case dto.MetricType_COUNTER:
		return strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64)
	case dto.MetricType_GAUGE:
		return strconv.FormatFloat(metric.GetGauge().GetValue(), 'f', -1, 64)
	case dto.MetricType_HISTOGRAM:
		h := metric.GetHistogram()
		return fmt.Sprintf("count=%d sum=%gs", h.GetSampleCount(), h.GetSampleSum())
	default:
		return typ.String()
	}
}
