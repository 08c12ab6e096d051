package main

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// seconds formats a length in seconds with its two largest units.
func seconds(sec float64) string {
	d := time.Duration(sec * float64(time.Second)).Round(time.Millisecond)
	if d == 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

func size(n int) string {
	return humanize.Bytes(uint64(n))
}
