package chain_events

import "errors"

var errNoProgramInstruction = errors.New("transaction has no instruction for the vault program")
