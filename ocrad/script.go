package ocrad

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/ocrkit/classify"
	"github.com/wudi/ocrkit/textline"
	"github.com/wudi/ocrkit/textpage"
)

// GuessProxy exposes one Character's guess list to a script as a plain
// JS-friendly object: a code point (as a single-rune string) and a rank
// value, in guess-preference order.
type GuessProxy struct {
	Code  string
	Value int
}

// scriptEngine runs a user-supplied JavaScript snippet against every
// Textline's characters after the built-in rewrite passes, adapted from
// this repository's PDF form-scripting engine: the same goja runtime, a
// narrow object exposed to the script instead of a document DOM, here one
// character's guess array of `{Code, Value}` objects at a time, which the
// script replaces by returning a new array.
type scriptEngine struct {
	vm *goja.Runtime
}

func newScriptEngine() *scriptEngine {
	return &scriptEngine{vm: goja.New()}
}

// RunOnTextpage applies src to every Textline in tp. The script must define
// a global function `rewrite(guesses)` returning a (possibly unchanged)
// array of `{Code, Value}` objects (the GuessProxy field names); it is called
// once per character with that character's current guess list.
func RunOnTextpage(tp *textpage.Textpage, src string) error {
	eng := newScriptEngine()
	if _, err := eng.vm.RunString(src); err != nil {
		return fmt.Errorf("ocrad: script compile: %w", err)
	}
	rewrite, ok := goja.AssertFunction(eng.vm.Get("rewrite"))
	if !ok {
		return fmt.Errorf("ocrad: script does not define function rewrite(guesses)")
	}

	for i := 0; i < tp.Textblocks(); i++ {
		tb := tp.Textblock(i)
		for j := 0; j < tb.Textlines(); j++ {
			if err := rewriteLine(eng.vm, rewrite, tb.Textline(j)); err != nil {
				return err
			}
		}
	}
	return nil
}

func rewriteLine(vm *goja.Runtime, rewrite goja.Callable, tl *textline.Textline) error {
	for i := 0; i < tl.Characters(); i++ {
		c := tl.Character(i)
		in := make([]GuessProxy, len(c.Guesses))
		for k, g := range c.Guesses {
			in[k] = GuessProxy{Code: string(g.Code), Value: g.Value}
		}

		result, err := rewrite(goja.Undefined(), vm.ToValue(in))
		if err != nil {
			return fmt.Errorf("ocrad: script rewrite: %w", err)
		}

		var out []GuessProxy
		if err := vm.ExportTo(result, &out); err != nil {
			continue // script returned something unusable; leave the character untouched
		}
		applyGuessRewrite(c, out)
	}
	return nil
}

func applyGuessRewrite(c *classify.Character, out []GuessProxy) {
	c.ClearGuesses()
	for _, g := range out {
		runes := []rune(g.Code)
		if len(runes) == 0 {
			continue
		}
		c.AddGuess(runes[0], g.Value)
	}
}
