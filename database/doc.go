// Package database wraps GORM behind a lifecycle component. SQLite is the
// default driver; WithDriver swaps it.
//
//	db := database.NewComponent(cfg, log).WithMigrations(adminkey.Migrations, "migrations")
//	app.RegisterComponent(db)
package database
