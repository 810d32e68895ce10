package folio

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger sets the logger used by the ledger and the valuation engine.
// Nothing is logged by default.
func SetLogger(l zerolog.Logger) { logger = l.With().Str("component", "folio").Logger() }
