package engine

// Version identifies the simulation build. A run token minted for a
// different version is rejected before any replay work: step-function
// changes, tuning changes and hash layout changes all bump it, since
// any of them can legitimately diverge checkpoint hashes.
const Version = 3
