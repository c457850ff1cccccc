// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — Cold-path diagnostics for the rhmap command & store
//
// Purpose:
//   - Logs phase transitions, snapshot summaries and failures.
//   - Keeps fmt out of the logging path; callers pre-render numbers with utils.Itoa.
//
// Notes:
//   - Output is one unformatted "<PREFIX>: <message>" line on stderr.
//   - The table core never calls into this package.
//
// ⚠️ Never invoke from table operations; use only around them.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "rhmap/utils"

// DropError logs "<prefix>: <err>" or just "<prefix>" when err is nil.
// The nil form is used as a cheap trace tag.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs "<prefix>: <message>".
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
