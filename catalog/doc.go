// Package catalog provides the read-only view of the catalog application's
// event and tier tables. The reconciliation coordinators consume this view
// and never write to catalog-owned rows.
package catalog
