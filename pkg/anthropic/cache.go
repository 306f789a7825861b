package anthropic

// BuildCachedSystemBlocks constructs system content blocks with a cache
// breakpoint. The debrief template is identical across runs, so a 1-hour TTL
// lets scheduled debriefs hit a warm prompt cache.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: "1h",
			},
		},
	}
}
