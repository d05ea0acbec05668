// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

package csvimport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// datasetHeader matches the published dataset, including its unnamed index column.
const datasetHeader = ",trans_date_trans_time,cc_num,merchant,category,amt,first,last,gender,street,city,state,zip,lat,long,city_pop,job,dob,trans_num,unix_time,merch_lat,merch_long,is_fraud"

// datasetRow builds a well-formed row. Minutes are added to 2020-06-21 12:00:00.
func datasetRow(index int, transNum, ccNum string, minutes int, amount string, fraud bool) string {
	label := "0"
	if fraud {
		label = "1"
	}
	ts := fmt.Sprintf("2020-06-21 %02d:%02d:00", 12+minutes/60, minutes%60)
	return strings.Join([]string{
		fmt.Sprint(index), ts, ccNum, "fraud_Kirlin and Sons", "personal_care", amount,
		"Jeff", "Elliott", "M", "351 Darlene Green", "Columbia", "SC", "29209",
		"33.9659", "-80.9355", "333497", "Mechanical engineer", "1968-03-19",
		transNum, "1371816865", "33.986391", "-81.200714", label,
	}, ",")
}

// writeCSV writes lines to a temporary file and returns its path.
func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}
