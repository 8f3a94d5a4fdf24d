package cli

import (
	"strings"

	"github.com/wlattner/mbl/instancebase"
)

func algorithmFromOptLabel(s string) instancebase.Algorithm {
	switch strings.ToUpper(s) {
	case "IGTREE":
		return instancebase.IGTree
	case "TRIBL":
		return instancebase.Tribl
	case "TRIBL2":
		return instancebase.Tribl2
	default:
		return instancebase.IB1
	}
}
