package testutil

import "github.com/zjrosen/mibstore/internal/exprtable"

// WithStandardTestData adds five rows over three owners. Two owners share
// the name "cpu" and one row is notInService.
//
// Index order: (net, cpu), (net, ifLoad), (ops, cpu), (ops, mem),
// (admin, uptime). Shorter owners sort first.
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithRow("ops", "cpu",
			Expression("$1*100/$2"), ValueType(exprtable.Unsigned32),
			Comment("cpu busy percent"), Delta(60), Prefix(1, 3, 6, 1, 4, 1, 2021, 11)).
		WithRow("ops", "mem",
			Expression("$1-$2"), ValueType(exprtable.Integer32),
			Status(exprtable.NotInService)).
		WithRow("net", "cpu",
			Expression("$1"), Comment("router cpu")).
		WithRow("net", "ifLoad",
			Expression("($1+$2)*8/$3"), ValueType(exprtable.Counter64), Delta(300)).
		WithRow("admin", "uptime",
			Expression("$1/100"), ValueType(exprtable.TimeTicks))
}

// StandardTestDataLen is the number of rows WithStandardTestData adds.
const StandardTestDataLen = 5
