package writestage

import "errors"

// ErrLedgerIO wraps any underlying ledger-writer error the main loop
// surfaces as a terminal LedgerIOFailure.
var ErrLedgerIO = errors.New("writestage: ledger write failed")
