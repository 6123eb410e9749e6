// Package renewal persists per-certificate renewal parameters and reports
// their status.
//
// Each certificate lineage has one INI file named <name>.conf in the renewal
// configs directory, with a single [renewalparams] section. Boolean flags are
// stored as the strings "True" and "False"; flags missing from an existing
// file count as enabled. Saves are atomic.
//
//	[renewalparams]
//	domains    = example.com, www.example.com
//	autorenew  = True
//	autodeploy = False
//	cert       = /etc/certflow/live/example.com/cert.pem
//
// ReportStatus turns the two flags into the operator-facing status line; see
// its decision table.
package renewal
