// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tomtom215/fraudscope/internal/database"
	"github.com/tomtom215/fraudscope/internal/models"
)

const bannerWidth = 50

var groupTitles = map[database.Dimension]string{
	database.DimensionCategory:     "Fraud by Category",
	database.DimensionHour:         "Fraud by Hour",
	database.DimensionDayOfWeek:    "Fraud by Day of Week",
	database.DimensionAmountBucket: "Fraud by Amount Bucket",
	database.DimensionState:        "Fraud by State",
	database.DimensionGender:       "Fraud by Gender",
	database.DimensionAgeGroup:     "Fraud by Age Group",
	database.DimensionCitySize:     "Fraud by City Size",
	database.DimensionMonth:        "Monthly Fraud Trend",
}

// groupTitle returns the console heading for a dimension, noting any limit.
func groupTitle(d database.Dimension, limit int) string {
	title, ok := groupTitles[d]
	if !ok {
		title = "Fraud by " + string(d)
	}
	if limit > 0 {
		title = fmt.Sprintf("%s (Top %d)", title, limit)
	}
	return title
}

// formatCount renders n with thousands separators.
func formatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// formatAmount renders f with two decimals and thousands separators.
func formatAmount(f float64) string {
	s := strconv.FormatFloat(math.Abs(f), 'f', 2, 64)
	dot := strings.IndexByte(s, '.')
	whole, _ := strconv.ParseInt(s[:dot], 10, 64)

	out := formatCount(whole) + s[dot:]
	if f < 0 {
		out = "-" + out
	}
	return out
}

func formatOptional(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}

func printOverview(w io.Writer, o *models.Overview) {
	rule := strings.Repeat("=", bannerWidth)
	_, _ = fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, "         FRAUD DETECTION OVERVIEW", rule)
	_, _ = fmt.Fprintf(w, "  Total Transactions:   %12s\n", formatCount(o.TotalTxns))
	_, _ = fmt.Fprintf(w, "  Fraudulent Txns:      %12s\n", formatCount(o.FraudCount))
	_, _ = fmt.Fprintf(w, "  Fraud Rate:           %11.2f%%\n", o.FraudRatePct)
	_, _ = fmt.Fprintf(w, "  Avg Transaction:      $%11.2f\n", o.AvgAmount)
	_, _ = fmt.Fprintf(w, "  Total Fraud Amount:   $%11s\n", formatAmount(o.TotalFraudAmount))
	_, _ = fmt.Fprintln(w, rule)
}

// table writes a titled, tab-aligned table.
func table(w io.Writer, title string, header []string, rows [][]string) {
	_, _ = fmt.Fprintf(w, "\n--- %s ---\n", title)
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(no rows)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	_ = tw.Flush()
}

func printGroupReport(w io.Writer, title string, g *models.GroupReport) {
	rows := make([][]string, 0, len(g.Rows))
	for i := range g.Rows {
		r := &g.Rows[i]
		rows = append(rows, []string{
			r.Group,
			formatCount(r.TotalTxns),
			formatCount(r.FraudTxns),
			strconv.FormatFloat(r.FraudRatePct, 'f', 2, 64),
			formatOptional(r.AvgFraudAmount),
			formatOptional(r.MedianFraudAmount),
			formatOptional(r.AvgLegitAmount),
			formatOptional(r.MedianLegitAmount),
		})
	}
	table(w, title, []string{
		g.Dimension, "total_txns", "fraud_txns", "fraud_rate_pct",
		"avg_fraud_amt", "median_fraud_amt", "avg_legit_amt", "median_legit_amt",
	}, rows)
}

func topTitle(title string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%s (Top %d)", title, limit)
	}
	return title
}

func printRepeatFraudCards(w io.Writer, cards []models.RepeatFraudCard, limit int) {
	rows := make([][]string, 0, len(cards))
	for i := range cards {
		c := &cards[i]
		rows = append(rows, []string{
			c.AccountID,
			formatCount(c.FraudCount),
			formatAmount(c.TotalFraudAmount),
			c.FirstFraud.Format(models.TimestampLayout),
			c.LastFraud.Format(models.TimestampLayout),
		})
	}
	table(w, topTitle("Repeat Fraud Cards", limit),
		[]string{"cc_num", "fraud_count", "total_fraud_amount", "first_fraud", "last_fraud"}, rows)
}

func printHighRiskMerchants(w io.Writer, merchants []models.HighRiskMerchant, limit int) {
	rows := make([][]string, 0, len(merchants))
	for i := range merchants {
		m := &merchants[i]
		rows = append(rows, []string{
			m.Merchant,
			m.Category,
			formatCount(m.TotalTxns),
			formatCount(m.FraudTxns),
			strconv.FormatFloat(m.FraudRatePct, 'f', 2, 64),
			formatAmount(m.TotalFraudAmount),
		})
	}
	table(w, topTitle("High-Risk Merchants", limit),
		[]string{"merchant", "category", "total_txns", "fraud_txns", "fraud_rate_pct", "total_fraud_amount"}, rows)
}

func printPairs(w io.Writer, title string, pairs []models.AnomalyPair) {
	rows := make([][]string, 0, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		rows = append(rows, []string{
			p.AccountID,
			p.Txn1ID,
			p.Txn2ID,
			p.Txn1Time.Format(pairTimeLayout),
			p.Txn2Time.Format(pairTimeLayout),
			strconv.FormatFloat(p.MinutesApart, 'f', 2, 64),
			formatOptional(p.DistanceMiles),
			fraudLabel(p.Txn1Fraud) + "/" + fraudLabel(p.Txn2Fraud),
		})
	}
	table(w, title, []string{"account_id", "txn1_id", "txn2_id", "txn1_time", "txn2_time", "minutes_apart", "distance_miles", "fraud"}, rows)
}
