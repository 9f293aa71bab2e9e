// Package wptl translates WordPress pages with AI while preserving their markup.
//
// The engine extracts visible text from a page's HTML, swaps each text run for
// an inert placeholder token, sends the text to an AI provider in size-bounded
// batches, and splices the translations back into the original structure.
// Page-builder metadata (Elementor and friends) is carried through untouched.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/wptl"
//	    "github.com/ZaguanLabs/wptl/processor"
//	    "github.com/ZaguanLabs/wptl/provider"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    // Create provider
//	    p, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
//	        APIKey: os.Getenv("GEMINI_API_KEY"),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Create translator
//	    t := wptl.NewTranslator(p,
//	        wptl.WithProcessor(processor.NewHTMLProcessor()),
//	        wptl.WithBatchBudget(400),
//	    )
//
//	    // Translate HTML
//	    result, err := t.TranslateHTML(ctx, "<p>Hello World</p>",
//	        wptl.Request{TargetLang: "es"}, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Content) // <p>Hola Mundo</p>
//	}
package wptl
