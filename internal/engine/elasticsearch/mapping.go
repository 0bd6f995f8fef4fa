package elasticsearch

// DefaultIndexName is the default Elasticsearch index used for storefront
// product documents.
const DefaultIndexName = "storefront_products"

// DefaultPairSeparator joins an option name and value into a single indexed
// keyword ("Color::Red"). It is reserved: names and values containing it are
// not representable and such buckets are dropped downstream.
const DefaultPairSeparator = "::"

// buildIndexMapping returns the full JSON mapping for the storefront products
// index, including an edge-ngram autocomplete analyzer for titles.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "autocomplete_tokenizer",
          "filter": ["lowercase"]
        },
        "autocomplete_search": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "tokenizer": {
        "autocomplete_tokenizer": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20,
          "token_chars": ["letter", "digit"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":           { "type": "keyword" },
      "shop":         { "type": "keyword" },
      "title":        { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search" } } },
      "handle":       { "type": "keyword" },
      "description":  { "type": "text" },
      "vendor":       { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "product_type": { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "tags":         { "type": "keyword" },
      "collections":  { "type": "keyword" },
      "options":      { "type": "object", "enabled": false },
      "option_pairs": { "type": "keyword" },
      "min_price":    { "type": "double" },
      "max_price":    { "type": "double" },
      "currency":     { "type": "keyword" },
      "status":       { "type": "keyword" },
      "image_url":    { "type": "keyword", "index": false },
      "created_at":   { "type": "date" },
      "updated_at":   { "type": "date" }
    }
  }
}`
}
