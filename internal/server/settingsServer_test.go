package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"deals_bot/pkg/errcodes"
	"deals_bot/pkg/rest"
)

func TestGetDiscountSettings(t *testing.T) {
	rq := require.New(t)

	srv := testServerWithSettings(t, &fakeHistory{}, &fakeSettings{minDiscount: 15})

	resp, err := http.Get(srv.URL + "/v1/settings/discount")
	rq.NoError(err)
	defer resp.Body.Close()

	rq.Equal(http.StatusOK, resp.StatusCode)

	var got rest.DiscountSettings
	rq.NoError(json.NewDecoder(resp.Body).Decode(&got))
	rq.InDelta(15, got.MinDiscountPercent, 1e-9)
}

func TestPutDiscountSettings(t *testing.T) {
	rq := require.New(t)

	settings := &fakeSettings{minDiscount: 10}
	srv := testServerWithSettings(t, &fakeHistory{}, settings)

	body, err := json.Marshal(rest.DiscountSettings{MinDiscountPercent: 25})
	rq.NoError(err)

	request, err := http.NewRequest(http.MethodPut, srv.URL+"/v1/settings/discount", bytes.NewReader(body))
	rq.NoError(err)

	resp, err := http.DefaultClient.Do(request)
	rq.NoError(err)
	defer resp.Body.Close()

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.InDelta(25, settings.minDiscount, 1e-9)

	var got rest.DiscountSettings
	rq.NoError(json.NewDecoder(resp.Body).Decode(&got))
	rq.InDelta(25, got.MinDiscountPercent, 1e-9)
}

func TestPutDiscountSettingsInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "zero", body: `{"minDiscountPercent": 0}`},
		{name: "negative", body: `{"minDiscountPercent": -5}`},
		{name: "too large", body: `{"minDiscountPercent": 150}`},
		{name: "not json", body: `percent=25`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			settings := &fakeSettings{minDiscount: 10}
			srv := testServerWithSettings(t, &fakeHistory{}, settings)

			request, err := http.NewRequest(
				http.MethodPut,
				srv.URL+"/v1/settings/discount",
				bytes.NewReader([]byte(tc.body)),
			)
			rq.NoError(err)

			resp, err := http.DefaultClient.Do(request)
			rq.NoError(err)
			defer resp.Body.Close()

			rq.Equal(http.StatusBadRequest, resp.StatusCode)

			var restErr rest.Error
			rq.NoError(json.NewDecoder(resp.Body).Decode(&restErr))
			rq.Equal(rest.ErrorCode(errcodes.ValidationError), restErr.Code)

			// threshold untouched
			rq.InDelta(10, settings.minDiscount, 1e-9)
		})
	}
}
