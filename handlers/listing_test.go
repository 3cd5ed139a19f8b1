package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"servora/services/listing"

	"github.com/stretchr/testify/assert"
)

func TestListingStatusCode(t *testing.T) {
	until := time.Now().Add(time.Hour)
	cases := []struct {
		err  error
		want int
	}{
		{&listing.RestrictedError{Until: until}, http.StatusForbidden},
		{listing.ErrProviderBlocked, http.StatusForbidden},
		{listing.ErrNotOwner, http.StatusForbidden},
		{listing.ErrBadLocation, http.StatusBadRequest},
		{fmt.Errorf("%w: cat-x", listing.ErrCategoryNotFound), http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, listingStatusCode(tc.err), "error %v", tc.err)
	}
}
