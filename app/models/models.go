// Package models holds the persisted entities of the back office.
//
// JSON names follow the column names of the hosted schema. Relations are
// single pointers: a missing related row renders as null, never as a list.
package models

import "github.com/shopspring/decimal"

func init() {
	// Money renders as a JSON number, matching the numeric columns.
	decimal.MarshalJSONWithoutQuotes = true
}
