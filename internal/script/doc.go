// Package script reads event scripts: a small text format describing field
// streams and the queries made against them. Scripts drive the replay
// command and make speech scenarios easy to write down.
//
//	# a list with one item, read twice
//	document id=notes.md
//	query reason=caret unit=line {
//	    enter list id=l1 items=1 {
//	        enter listitem id=i1 { "hello" }
//	    }
//	}
//	query reason=caret unit=line {
//	    enter list id=l1 items=1 { enter listitem id=i1 { "again" } }
//	}
//
// An enter with a body closes its field after the body. Without a body the
// field stays open until an explicit exit.
package script
