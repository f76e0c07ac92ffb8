package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restaurantListHTML = `<html><body>
<section class="c-mapstack__card" data-slug="neptune-oyster">
  <div class="c-mapstack__card-hed"><div><h1>  Neptune   Oyster </h1></div></div>
  <div class="c-entry-content"><p>Lobster rolls and a short white list.</p></div>
  <div class="c-mapstack__address"><a href="https://maps.example/1">63 Salem St, Boston, MA</a></div>
  <div class="c-mapstack__phone-url"><a href="tel:+16177423474">(617) 742-3474</a><a href="https://neptuneoyster.com">Visit Website</a></div>
  <div class="c-mapstack__photo"><span class="e-image__image" data-original="/images/neptune.jpg"></span></div>
</section>
<section class="c-mapstack__card" data-slug="neptune-oyster">
  <div class="c-mapstack__card-hed"><h1>Neptune Oyster (again)</h1></div>
</section>
<section class="c-mapstack__card" data-slug="">
  <div class="c-mapstack__card-hed"><h1>No Slug Bistro</h1></div>
</section>
<section class="c-mapstack__card" data-slug="intro">
  <div class="c-entry-content"><p>Our favorite places this season.</p></div>
</section>
<section class="c-mapstack__card" data-slug="sarma">
  <div class="c-mapstack__card-hed"><h1>Sarma</h1></div>
  <div class="c-mapstack__address">249 Pearl St, Somerville, MA</div>
  <div class="c-mapstack__photo"><img src="https://cdn.example/sarma.jpg"></div>
</section>
</body></html>`

func TestExtractRestaurants(t *testing.T) {
	restaurants, err := ExtractRestaurants(restaurantListHTML, "https://boston.example/maps/best")
	require.NoError(t, err)
	require.Len(t, restaurants, 2)

	neptune := restaurants[0]
	assert.Equal(t, "Neptune Oyster", neptune.Name)
	assert.Equal(t, "Lobster rolls and a short white list.", neptune.Description)
	assert.Equal(t, "63 Salem St, Boston, MA", neptune.Address)
	assert.Equal(t, "(617) 742-3474", neptune.Phone)
	assert.Equal(t, "https://neptuneoyster.com", neptune.Website)
	assert.Equal(t, "https://boston.example/images/neptune.jpg", neptune.Image)

	sarma := restaurants[1]
	assert.Equal(t, "Sarma", sarma.Name)
	assert.Equal(t, "249 Pearl St, Somerville, MA", sarma.Address)
	assert.Empty(t, sarma.Website)
	assert.Empty(t, sarma.Phone)
	assert.Equal(t, "https://cdn.example/sarma.jpg", sarma.Image)
}

func TestExtractRestaurants_NoCards(t *testing.T) {
	restaurants, err := ExtractRestaurants("<p>nothing here</p>", "https://boston.example/")
	require.NoError(t, err)
	assert.Empty(t, restaurants)
}

func TestFetchRestaurants(t *testing.T) {
	srv, _ := siteServer(t, map[string]string{"/maps/best": restaurantListHTML})

	restaurants, err := FetchRestaurants(context.Background(), srv.URL+"/maps/best", nil)
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, srv.URL+"/images/neptune.jpg", restaurants[0].Image)

	_, err = FetchRestaurants(context.Background(), srv.URL+"/missing", nil)
	assert.Error(t, err)
}
