// Package xlitfix corrects machine-transliterated South-Asian text with a
// curated source-word dictionary.
//
// A Replacer substitutes known words before the transliteration model runs,
// repairs tokens the model only partially transliterated, and reports the
// source-script words nothing could resolve. A Transliterator wires a
// Replacer to a model, a cache, and content processors.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/xlitfix"
//	    "github.com/ZaguanLabs/xlitfix/cache"
//	    "github.com/ZaguanLabs/xlitfix/dictionary"
//	    "github.com/ZaguanLabs/xlitfix/provider"
//	)
//
//	func main() {
//	    dict, err := dictionary.LoadFile("tam_Taml.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    r, err := xlitfix.NewReplacer("tam_Taml", dict)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    t := xlitfix.NewTransliterator(r,
//	        xlitfix.WithModel(provider.NewOpenAIProvider(provider.OpenAIConfig{
//	            APIKey: os.Getenv("OPENAI_API_KEY"),
//	        })),
//	        xlitfix.WithCache(cache.NewInMemoryCache(3600)),
//	    )
//
//	    result, err := t.Process(context.Background(), []string{"ரோம் செல்ல வேண்டும்."})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.Corrected[0]) // rome sella vendum.
//	}
package xlitfix
