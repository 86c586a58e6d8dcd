package btcdca

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/janw/btcdca/date"
	"github.com/shopspring/decimal"
)

/*
	{
	    "error": [],
	    "result": {
	        "XXBTZEUR": {
	            "a": ["57321.10000", "1", "1.000"],
	            "b": ["57321.00000", "2", "2.000"],
	            "c": ["57321.00000", "0.00080000"],
	            ...
	        }
	    }
	}
*/

// krakenTickerURL serves the latest BTC/EUR print; no API key required.
const krakenTickerURL = "https://api.kraken.com/0/public/Ticker?pair=XXBTZEUR"

// FetchCurrentPrice returns the latest BTC/EUR market price and today's date.
// Responses are cached on disk for the day, so repeated report runs do not
// hammer the endpoint.
func FetchCurrentPrice() (decimal.Decimal, date.Date, error) {
	var jobj any
	if err := jwget(daily(), krakenTickerURL, &jobj); err != nil {
		return decimal.Zero, date.Date{}, fmt.Errorf("error fetching BTC/EUR ticker: %w", err)
	}

	// "c" is the last closed trade; its first element is the price.
	path := "$.result.XXBTZEUR.c[0]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Zero, date.Date{}, fmt.Errorf("error parsing BTC/EUR ticker: %q %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer, keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	s, ok := jval.(string)
	if !ok {
		return decimal.Zero, date.Date{}, fmt.Errorf("error parsing BTC/EUR ticker: %q not a string: %v", path, jval)
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, date.Date{}, fmt.Errorf("error parsing BTC/EUR ticker price %q: %w", s, err)
	}
	return price, date.Today(), nil
}
