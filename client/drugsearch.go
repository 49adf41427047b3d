package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const (
	drugSearchURL = "https://www.health.kr/searchDrug/ajax/ajax_commonSearch.asp"
	drugDetailURL = "https://www.health.kr/searchDrug/ajax/ajax_result_drug2.asp"
)

// PillInfo is one hit of the drug-information search.
type PillInfo struct {
	DrugCode string `json:"drug_code"`
	DrugName string `json:"drug_name"`
	PackImg  string `json:"pack_img"`
	Dosage   string `json:"dosage"`
	Effect   string `json:"effect"`
}

// PillInfoDetail extends a search hit with the caution text.
type PillInfoDetail struct {
	PillInfo
	Caution string `json:"caution"`
}

// DrugSearchClient queries the public drug-information endpoints. Responses
// change rarely, so results are cached in-process for a short while.
type DrugSearchClient struct {
	searchURL string
	detailURL string
	client    *http.Client
	cache     *cache.Cache
}

// NewDrugSearchClient returns a client against the production endpoints.
func NewDrugSearchClient() *DrugSearchClient {
	return NewDrugSearchClientWithURLs(drugSearchURL, drugDetailURL)
}

// NewDrugSearchClientWithURLs allows tests to point the client at stubs.
func NewDrugSearchClientWithURLs(searchURL, detailURL string) *DrugSearchClient {
	return &DrugSearchClient{
		searchURL: searchURL,
		detailURL: detailURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		cache:     cache.New(10*time.Minute, 30*time.Minute),
	}
}

func (d *DrugSearchClient) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderUnknown, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnknown, err)
	}
	return nil
}

// Search queries the drug search by keyword and returns all hits. An empty
// result set is not an error.
func (d *DrugSearchClient) Search(ctx context.Context, searchWord string) ([]PillInfo, error) {
	cacheKey := "search:" + searchWord
	if v, ok := d.cache.Get(cacheKey); ok {
		if hits, ok := v.([]PillInfo); ok {
			return hits, nil
		}
	}

	params := url.Values{}
	params.Set("search_word", searchWord)
	params.Set("search_flag", "all")

	var hits []PillInfo
	if err := d.getJSON(ctx, d.searchURL, params, &hits); err != nil {
		return nil, err
	}

	d.cache.Set(cacheKey, hits, cache.DefaultExpiration)
	return hits, nil
}

// Detail fetches the full reference entry for one drug code.
func (d *DrugSearchClient) Detail(ctx context.Context, drugCode string) (*PillInfoDetail, error) {
	cacheKey := "detail:" + drugCode
	if v, ok := d.cache.Get(cacheKey); ok {
		if detail, ok := v.(*PillInfoDetail); ok {
			return detail, nil
		}
	}

	params := url.Values{}
	params.Set("drug_cd", drugCode)

	var detail PillInfoDetail
	if err := d.getJSON(ctx, d.detailURL, params, &detail); err != nil {
		return nil, err
	}

	d.cache.Set(cacheKey, &detail, cache.DefaultExpiration)
	return &detail, nil
}
