/*
Package beatbox expands context-free rule tables into terminal streams and renders
them as audio.

A rule table maps single-character non-terminals to replacement strings. Expanding a
start sequence replaces every non-terminal, depth first and left to right, until only
terminals remain. Each terminal becomes one 8-bit sample of a mono 8 kHz WAV file, so a
small table of bars and phrases describes minutes of sound.

# Concept

Expansion is driven by an explicit position stack (pkg/expand) rather than recursion.
The consumer pulls one terminal at a time, so memory grows with nesting depth rather
than output length. A traversal can be saved as a checkpoint and resumed elsewhere.

# Usage

	eng, err := beatbox.New("beat.txt")
	if err != nil {
		log.Fatal(err)
	}

	n, err := eng.RenderFile(ctx, "L", "beat.wav")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d samples\n", n)

Rule tables can also be built in memory with grammar.New or loaded through any
ports.RuleLoader (see WithLoader).
*/
package beatbox
