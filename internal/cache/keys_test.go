package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Format(t *testing.T) {
	key := Key(PrefixProducts,
		Int("page", 2),
		Int("pages", 20),
		String("sort", "ASC"),
		OptString("status", nil),
		Bool("inStock", true),
		Set("category", []string{"c-2", "c-1"}),
	)

	assert.Equal(t, "PRODUCTS:page=2:pages=20:sort=ASC:status=:inStock=true:category=c-1,c-2", key)
}

func TestKey_SetOrderDoesNotMatter(t *testing.T) {
	in := []string{"b", "a", "c"}
	a := Key(PrefixProducts, Set("category", in))
	b := Key(PrefixProducts, Set("category", []string{"c", "a", "b"}))

	assert.Equal(t, a, b)
	assert.Equal(t, []string{"b", "a", "c"}, in, "Set must not reorder the caller's slice")
}

func TestKey_OptionalValues(t *testing.T) {
	level := 2
	assert.Equal(t, "CATEGORIES:level=all", Key(PrefixCategories, OptInt("level", nil)))
	assert.Equal(t, "CATEGORIES:level=2", Key(PrefixCategories, OptInt("level", &level)))
	assert.Equal(t, "PRODUCT:productId=p-1", Key(PrefixProduct, String("productId", "p-1")))
}
