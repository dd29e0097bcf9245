package typesystem

// cardinality is the set of counts a seqable type admits: [lo, hi] with
// hi < 0 meaning unbounded. evenOnly marks keyword-argument sequences,
// which always hold an even number of elements.
type cardinality struct {
	lo       int
	hi       int
	evenOnly bool
}

// impliedCountOf derives the implicit cardinality of a structural type.
// For keyword-argument sequences this includes the parity constraint even
// when every entry is optional.
func impliedCountOf(t Type) cardinality {
	switch tv := t.(type) {
	case TCountRange:
		hi := -1
		if tv.Upper != nil {
			hi = *tv.Upper
		}
		return cardinality{lo: tv.Lower, hi: hi}
	case TKwArgs:
		c := cardinality{lo: 2 * len(tv.Mandatory), hi: -1, evenOnly: true}
		if tv.Complete {
			c.hi = 2 * (len(tv.Mandatory) + countExtra(tv.Mandatory, tv.Optional))
		}
		return c
	case TTuple:
		c := cardinality{lo: len(tv.Elements), hi: len(tv.Elements)}
		if tv.Rest != nil {
			c.hi = -1
		}
		return c
	case TRecord:
		c := cardinality{lo: len(tv.Fields), hi: -1}
		if tv.Complete {
			c.hi = len(tv.Fields) + countExtra(tv.Fields, tv.Optional)
		}
		return c
	}
	return cardinality{lo: 0, hi: -1}
}

func countExtra(mandatory, optional map[string]Type) int {
	n := 0
	for k := range optional {
		if _, dup := mandatory[k]; !dup {
			n++
		}
	}
	return n
}

func (c cardinality) intersects(o cardinality) bool {
	lo := c.lo
	if o.lo > lo {
		lo = o.lo
	}
	hi := c.hi
	if hi < 0 || (o.hi >= 0 && o.hi < hi) {
		hi = o.hi
	}
	if hi >= 0 && lo > hi {
		return false
	}
	if c.evenOnly || o.evenOnly {
		if lo%2 == 0 {
			return true
		}
		return hi < 0 || lo+1 <= hi
	}
	return true
}

// countWithin reports whether every count admitted by c is admitted by r.
func countWithin(c cardinality, r TCountRange) bool {
	if c.lo < r.Lower {
		return false
	}
	if r.Upper == nil {
		return true
	}
	return c.hi >= 0 && c.hi <= *r.Upper
}
