// Package quarry is a lazy, immutable query builder with a thin
// active-record layer on top.
//
// # Datasets
//
// A Dataset is an immutable query representation. Configuring calls
// return a new dataset and never mutate the receiver, so datasets can be
// shared and refined freely:
//
//	ds := quarry.NewDataset(drv).From("people")
//	adults := ds.Where(quarry.Cond{"age": quarry.Range{Lo: 18, Hi: 130}})
//	names := adults.Select("name").Order("name")
//
// Terminal operations generate SQL and execute it through the bound
// driver:
//
//	rows, err := names.All(ctx)
//	n, err := adults.Count(ctx)
//
// Iteration re-issues the query each time, so a stored dataset always
// reflects current database state.
//
// # Identifiers
//
// Symbolic identifiers use separator rewriting: "items__price" renders
// as items.price and "price___total" as price AS total. Raw fragments
// bypass rewriting entirely:
//
//	ds.Select(quarry.Raw("COUNT(*)"))
//
// # Models
//
// A Model maps a table and layers persistence lifecycle over a dataset:
//
//	users, err := quarry.NewModel("User", drv)
//	u := users.New(quarry.Row{"name": "ana"})
//	err = u.Save(ctx)
//
// # Dialects
//
// Database backends live under dialect/: the generic database/sql driver
// in dialect/sql, and per-database adapters in dialect/sqlite,
// dialect/postgres and dialect/mysql. Importing an adapter registers its
// URL scheme:
//
//	import _ "github.com/syssam/quarry/dialect/sqlite"
//
//	cfg, _ := quarry.LoadConfig("db.yaml")
//	drv, _ := cfg.Open()
package quarry
