// Package report renders a dashboard snapshot for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

const barWidth = 20

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON:
		return f, nil
	case "":
		return Text, nil
	}
	return "", fmt.Errorf("unknown format %q (want text or json)", s)
}

func Render(w io.Writer, snap dashboard.Snapshot, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case Text, "":
		return renderText(w, snap)
	}
	return fmt.Errorf("unknown format %q", f)
}

func renderText(w io.Writer, snap dashboard.Snapshot) error {
	st := snap.State
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Campaign performance")
	if st.Error != "" {
		fmt.Fprintf(tw, "Failed to load dashboard: %s\n", st.Error)
	}
	fmt.Fprintf(tw, "Filters: search=%q channels=%s sort=%s\n", st.SearchTerm, ChannelsLabel(st.SelectedChannels), SortLabel(st.Sort))

	sum := snap.Summary
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total Spend\t%s\n", Currency(sum.TotalSpend))
	fmt.Fprintf(tw, "Total Conversions\t%s\n", Compact(sum.TotalConversions))
	fmt.Fprintf(tw, "Total Impressions\t%s\n", Compact(sum.TotalImpressions))
	fmt.Fprintf(tw, "Avg CTR\t%s\n", Percent(sum.AvgCTR))

	page := snap.Page
	fmt.Fprintln(tw)
	if page.TotalPages == 0 {
		fmt.Fprintf(tw, "Records: %d total\n", page.TotalRecords)
	} else {
		fmt.Fprintf(tw, "Records: %d total, page %d of %d\n", page.TotalRecords, page.Number, page.TotalPages)
	}
	if len(page.Records) == 0 {
		fmt.Fprintln(tw, "No data found")
	} else {
		fmt.Fprintln(tw, "ID\tCHANNEL\tREGION\tSPEND\tIMPRESSIONS\tCLICKS\tCONVERSIONS\tCTR")
		for _, r := range page.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Channel, r.Region, Currency(r.Spend),
				Count(r.Impressions), Count(r.Clicks), Count(r.Conversions), Percent(r.CTR()))
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Spend by channel")
	if len(snap.Chart) == 0 {
		fmt.Fprintln(tw, "No data available")
	}
	for _, c := range snap.Chart {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Channel, Bar(c.Spend, snap.Chart[0].Spend, barWidth), Currency(c.Spend))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Top performers")
	if len(snap.TopPerformers) == 0 {
		fmt.Fprintln(tw, "No data available")
	}
	for i, p := range snap.TopPerformers {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s conversions\n", i+1, p.Channel, Percent(p.CTR), Count(p.Conversions))
	}
	return tw.Flush()
}

// Bar scales v against max into at most width '#' characters.
func Bar(v, max decimal.Decimal, width int) string {
	if !max.IsPositive() || !v.IsPositive() {
		return ""
	}
	n := v.Div(max).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart()
	return strings.Repeat("#", int(min(n, int64(width))))
}

func ChannelsLabel(c store.ChannelSet) string {
	if c.Len() == 0 {
		return "all"
	}
	return strings.Join(c.Values(), ",")
}

func SortLabel(s models.SortConfig) string {
	if s.Key == models.SortNone {
		return "none"
	}
	return string(s.Key) + " " + string(s.Direction)
}
