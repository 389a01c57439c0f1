// Package report provides serialization types for allocation results.
//
// Allocation results key amounts by account identity, which is useful in
// process but meaningless on the wire. A [Report] resolves identities to the
// plan's declared account names and expands schedules into sorted time/amount
// points, giving a stable JSON form for files, caching, and tool output:
//
//	{
//	  "requested": 250,
//	  "delivered": 250,
//	  "accounts": [
//	    {"name": "chequing", "total": 100, "schedule": [{"time": 0, "amount": 100}]},
//	    {"name": "savings", "total": 150, "schedule": [{"time": 0, "amount": 150}]}
//	  ]
//	}
//
// Common operations:
//
//	r := report.FromResult(plan, result)       // Result → Report
//	data, _ := report.Marshal(r)               // Report → []byte
//	parsed, _ := report.Unmarshal(data)        // []byte → Report
//	report.WriteFile(r, "allocation.json")     // Report → file
package report
