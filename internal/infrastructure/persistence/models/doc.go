// Package models holds the gorm row types of the settlement schema and their
// mapping to domain aggregates. Domain types carry no gorm tags; repositories
// read and write these rows and convert with ToDomain and the From* helpers.
package models
