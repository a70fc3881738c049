// Package analyser turns scraped portal conflict data into a verdict.
//
// The input rows come in two shapes depending on the producer: the
// browser scrape emits positional cell lists while the public
// conflict-check endpoint accepts object rows with severity and message
// fields. Row absorbs both. A name is VALID when no error row carries a
// severity outside info and success; otherwise the blocking context is
// condensed and handed to an Adviser for alternative name suggestions.
package analyser
