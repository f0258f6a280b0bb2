// Package models contains the GORM persistence models of the financial engine.
// Domain entities carry no ORM tags; each model converts to and from its
// entity with ToDomain / FromDomain.
//
// Structure:
// - base.go: shared columns (BaseModel, TenantModel, TenantAggregateModel)
// - trade.go: purchase orders, order costs, production orders, customer invoices
// - costing.go: costing sheet versions and their lines
package models
