package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProductInfo is the catalog snapshot the lifecycle managers consume:
// availability, base price and warranty duration.
type ProductInfo struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	BasePrice      int64  `json:"basePrice"`
	WarrantyMonths int    `json:"warrantyMonths"`
}

func (p *ProductInfo) Active() bool {
	return p.Status == "active"
}

type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProductById returns the catalog snapshot for a product, or nil when
// the catalog does not know the id.
func (c *CatalogClient) GetProductById(ctx context.Context, id uint64) (*ProductInfo, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/products/%d", c.baseURL, id), nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}
	var p ProductInfo
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}

	return &p, nil
}
