// Package handlers implements the HTTP API over the run history.
//
// Handlers delegate to services.Reports and the checkpoint registry and only
// deal with parameter parsing, error mapping and model-to-API conversion.
//
// # API Endpoints
//
// All routes are mounted under /api/v1 by RegisterHandlers.
//
//	┌────────┬──────────────────┬─────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                             │
//	├────────┼──────────────────┼─────────────────────────────────────────┤
//	│ GET    │ /runs            │ List runs with filtering/pagination     │
//	│ GET    │ /runs/{id}       │ Get one run                             │
//	│ GET    │ /runs/{id}/log   │ Commands and assertions of a run        │
//	│ GET    │ /summary         │ Verdict counts                          │
//	│ GET    │ /checkpoints     │ Registered checkpoints                  │
//	└────────┴──────────────────┴─────────────────────────────────────────┘
//
// # Runs Handler
//
// GET /runs query parameters:
//
//	┌────────────┬──────────┬──────────────────────────────────────────┐
//	│ Parameter  │ Type     │ Description                              │
//	├────────────┼──────────┼──────────────────────────────────────────┤
//	│ scenario   │ []string │ Filter by scenario name (OR logic)       │
//	│ module     │ []string │ Filter by test module                    │
//	│ checkpoint │ []string │ Filter by checkpoint name                │
//	│ verdict    │ []string │ pass, fail, error or skip                │
//	│ page       │ int      │ Page number (default: 1)                 │
//	│ pageSize   │ int      │ Items per page (default: 20, max: 100)   │
//	└────────────┴──────────┴──────────────────────────────────────────┘
//
// List values may be repeated or comma separated:
//
//	/runs?scenario=nightly&verdict=fail,error&pageSize=50
//
// Response:
//
//	{
//	    "page": 1,
//	    "pageCount": 1,
//	    "total": 2,
//	    "runs": [
//	        {
//	            "id": "5f0c...",
//	            "scenario": "nightly",
//	            "module": "augeas",
//	            "checkpoint": "aug_clear",
//	            "params": {"image_format": "qcow2"},
//	            "verdict": "fail",
//	            "reason": "expected ... to succeed",
//	            "durationMs": 5230
//	        }
//	    ]
//	}
//
// GET /summary takes the same filters, without paging.
//
// Errors:
//   - 400 Bad Request: invalid run id, verdict, page or pageSize
//   - 404 Not Found: unknown run
package handlers
