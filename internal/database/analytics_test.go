// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/fraudscope/internal/models"
)

// seedReportData inserts eight transactions:
//
//	acct-1  shopping_net  NY  3 fraud (200, 300, 400) + 1 legit (10)
//	acct-2  grocery_pos   CA  1 fraud (50) + 2 legit (20, 40)
//	acct-3  no category, state or gender, 1 legit (6)
func seedReportData(t *testing.T, db *DB) {
	t.Helper()

	shop := []txnOption{withCategory("shopping_net"), withState("NY"), withMerchant("fraud_Shop")}
	grocer := []txnOption{withCategory("grocery_pos"), withState("CA"), withMerchant("fraud_Grocer")}

	unknown := newTestTxn("l4", "acct-3", -600, "6.00", withCategory(""), withState(""))
	unknown.Gender = ""
	unknown.Derive()

	insertTestTxns(t, db,
		newTestTxn("f1", "acct-1", 0, "200.00", append(shop, withFraud())...),
		newTestTxn("f2", "acct-1", 10, "300.00", append(shop, withFraud())...),
		newTestTxn("f3", "acct-1", 20, "400.00", append(shop, withFraud())...),
		newTestTxn("l1", "acct-1", 30, "10.00", shop...),
		newTestTxn("l2", "acct-2", 0, "20.00", grocer...),
		newTestTxn("l3", "acct-2", 1320, "40.00", grocer...),
		newTestTxn("f4", "acct-2", 5, "50.00", append(grocer, withFraud())...),
		unknown,
	)
}

func TestOverview(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)

	o, err := db.Overview(context.Background())
	checkNoError(t, err)

	checkInt64Equal(t, "total_txns", o.TotalTxns, 8)
	checkInt64Equal(t, "fraud_count", o.FraudCount, 4)
	checkFloatNear(t, "fraud_rate_pct", o.FraudRatePct, 50.0, 1e-9)
	checkFloatNear(t, "avg_amount", o.AvgAmount, 128.25, 1e-9)
	checkFloatNear(t, "total_fraud_amount", o.TotalFraudAmount, 950.0, 1e-9)
}

func TestOverview_EmptyTable(t *testing.T) {
	db := setupTestDB(t)

	o, err := db.Overview(context.Background())
	checkNoError(t, err)
	if *o != (models.Overview{}) {
		t.Errorf("expected zero overview, got %+v", *o)
	}
}

func TestGroupReport_Category(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)

	report, err := db.GroupReport(context.Background(), DimensionCategory, 0)
	checkNoError(t, err)
	checkStringEqual(t, "dimension", report.Dimension, "category")

	want := []models.GroupStat{
		{Group: "shopping_net", TotalTxns: 4, FraudTxns: 3, FraudRatePct: 75.0,
			AvgFraudAmount: floatPtr(300), MedianFraudAmount: floatPtr(300),
			AvgLegitAmount: floatPtr(10), MedianLegitAmount: floatPtr(10)},
		{Group: "grocery_pos", TotalTxns: 3, FraudTxns: 1, FraudRatePct: 33.33,
			AvgFraudAmount: floatPtr(50), MedianFraudAmount: floatPtr(50),
			AvgLegitAmount: floatPtr(30), MedianLegitAmount: floatPtr(30)},
		{Group: models.UnknownBucket, TotalTxns: 1, FraudTxns: 0, FraudRatePct: 0,
			AvgLegitAmount: floatPtr(6), MedianLegitAmount: floatPtr(6)},
	}

	if len(report.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %+v", len(want), len(report.Rows), report.Rows)
	}
	for i, w := range want {
		got := report.Rows[i]
		checkStringEqual(t, "group", got.Group, w.Group)
		checkInt64Equal(t, w.Group+" total", got.TotalTxns, w.TotalTxns)
		checkInt64Equal(t, w.Group+" fraud", got.FraudTxns, w.FraudTxns)
		checkFloatNear(t, w.Group+" rate", got.FraudRatePct, w.FraudRatePct, 1e-9)
		checkFloatPtr(t, w.Group+" avg fraud", got.AvgFraudAmount, w.AvgFraudAmount)
		checkFloatPtr(t, w.Group+" median fraud", got.MedianFraudAmount, w.MedianFraudAmount)
		checkFloatPtr(t, w.Group+" avg legit", got.AvgLegitAmount, w.AvgLegitAmount)
		checkFloatPtr(t, w.Group+" median legit", got.MedianLegitAmount, w.MedianLegitAmount)
	}
}

func TestGroupReport_HourSortsNumerically(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)

	report, err := db.GroupReport(context.Background(), DimensionHour, 0)
	checkNoError(t, err)

	var groups []string
	for _, row := range report.Rows {
		groups = append(groups, row.Group)
	}
	want := []string{"2", "10", "12"}
	if len(groups) != len(want) {
		t.Fatalf("expected groups %v, got %v", want, groups)
	}
	for i := range want {
		checkStringEqual(t, "hour", groups[i], want[i])
	}
}

func TestGroupReport_StateLimit(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)

	report, err := db.GroupReport(context.Background(), DimensionState, 2)
	checkNoError(t, err)
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
	checkStringEqual(t, "first state", report.Rows[0].Group, "NY")
	checkStringEqual(t, "second state", report.Rows[1].Group, "CA")
}

// Every dimension keeps unknown groups, so group totals add up to the overview.
func TestGroupReport_TotalsMatchOverview(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	o, err := db.Overview(ctx)
	checkNoError(t, err)

	for _, d := range Dimensions() {
		t.Run(string(d), func(t *testing.T) {
			report, err := db.GroupReport(ctx, d, 0)
			checkNoError(t, err)

			var total, fraud int64
			for _, row := range report.Rows {
				total += row.TotalTxns
				fraud += row.FraudTxns

				if row.TotalTxns > 0 {
					rate := float64(row.FraudTxns) * 100 / float64(row.TotalTxns)
					checkFloatNear(t, row.Group+" rate", row.FraudRatePct, rate, 0.005)
				}
			}
			checkInt64Equal(t, "total", total, o.TotalTxns)
			checkInt64Equal(t, "fraud", fraud, o.FraudCount)
		})
	}
}

func TestParseDimension(t *testing.T) {
	for _, d := range Dimensions() {
		got, err := ParseDimension(string(d))
		checkNoError(t, err)
		checkStringEqual(t, "dimension", string(got), string(d))
		if d.ReportName() == "" {
			t.Errorf("%s has no report name", d)
		}
	}

	_, err := ParseDimension("cc_num; DROP TABLE transactions")
	checkError(t, err)
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}

	db := setupTestDB(t)
	_, err = db.GroupReport(context.Background(), Dimension("merchant"), 0)
	if !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension from GroupReport, got %v", err)
	}
}

func TestRepeatFraudCards(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	cards, err := db.RepeatFraudCards(ctx, 3, 20)
	checkNoError(t, err)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}

	c := cards[0]
	checkStringEqual(t, "cc_num", c.AccountID, "acct-1")
	checkInt64Equal(t, "fraud_count", c.FraudCount, 3)
	checkFloatNear(t, "total_fraud_amount", c.TotalFraudAmount, 900, 1e-9)
	if !c.FirstFraud.Equal(testBaseTime) {
		t.Errorf("first_fraud: expected %v, got %v", testBaseTime, c.FirstFraud)
	}
	if want := testBaseTime.Add(20 * time.Minute); !c.LastFraud.Equal(want) {
		t.Errorf("last_fraud: expected %v, got %v", want, c.LastFraud)
	}

	cards, err = db.RepeatFraudCards(ctx, 1, 0)
	checkNoError(t, err)
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards with min 1, got %d", len(cards))
	}
	checkStringEqual(t, "most fraud first", cards[0].AccountID, "acct-1")
}

func TestHighRiskMerchants(t *testing.T) {
	db := setupTestDB(t)
	seedReportData(t, db)
	ctx := context.Background()

	merchants, err := db.HighRiskMerchants(ctx, 2, 1, 20)
	checkNoError(t, err)
	if len(merchants) != 2 {
		t.Fatalf("expected 2 merchants, got %d: %+v", len(merchants), merchants)
	}
	checkStringEqual(t, "first merchant", merchants[0].Merchant, "fraud_Shop")
	checkStringEqual(t, "first category", merchants[0].Category, "shopping_net")
	checkFloatNear(t, "first rate", merchants[0].FraudRatePct, 75.0, 1e-9)
	checkFloatNear(t, "first fraud amount", merchants[0].TotalFraudAmount, 900, 1e-9)
	checkStringEqual(t, "second merchant", merchants[1].Merchant, "fraud_Grocer")
	checkFloatNear(t, "second rate", merchants[1].FraudRatePct, 33.33, 1e-9)

	merchants, err = db.HighRiskMerchants(ctx, 2, 2, 20)
	checkNoError(t, err)
	if len(merchants) != 1 {
		t.Fatalf("expected 1 merchant with min 2 frauds, got %d", len(merchants))
	}
}
