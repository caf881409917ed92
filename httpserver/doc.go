/*
Package httpserver exposes the reconciliation pipeline over HTTP.

The admin API drives the coordinators for one catalog event at a time; the
public API reads the registry mirror without touching the ledger.

# Endpoints

  - POST /api/admin/reconcile/{event_id} - Run event, tier and archival
    reconciliation for a catalog event
  - POST /api/admin/archival/{record_id}/reveal - Reveal an archival record
  - GET /api/public/registration/{event_id} - Read the registration mirror
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

A reconcile run reports every stage it reached. Per-tier failures are carried
inside the tier stage and do not abort the run; event-level and archival
failures do, with the failed stage named in the response.
*/
package httpserver
