package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL points at the public reference dataset API.
const DefaultBaseURL = "https://swapi.dev/api/"

// Client pages through the dataset API's collections. Responses arrive in
// pages linked by a `next` URL; the client follows the chain until it runs out.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logrus.FieldLogger
}

func NewClient(baseURL string, logger logrus.FieldLogger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		logger:     logger,
	}
}

type page[T any] struct {
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// fetchAll drains every page of one collection.
func fetchAll[T any](c *Client, collection string) ([]T, error) {
	var records []T
	var pageURL = c.baseURL + collection + "/"

	for pageURL != "" {
		c.logger.WithField("url", pageURL).Debug("fetching page")

		current, err := fetchPage[T](c, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", collection, err)
		}

		records = append(records, current.Results...)
		if current.Next == nil {
			break
		}
		pageURL = *current.Next
	}

	c.logger.WithFields(logrus.Fields{"collection": collection, "records": len(records)}).Info("collection fetched")
	return records, nil
}

func fetchPage[T any](c *Client, pageURL string) (result page[T], err error) {
	request, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return result, err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return result, err
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return result, fmt.Errorf("dataset API returned status %d: %s", response.StatusCode, string(body))
	}

	return result, json.NewDecoder(response.Body).Decode(&result)
}

func (c *Client) People() ([]personRecord, error) { return fetchAll[personRecord](c, "people") }

func (c *Client) Films() ([]filmRecord, error) { return fetchAll[filmRecord](c, "films") }

func (c *Client) Starships() ([]starshipRecord, error) {
	return fetchAll[starshipRecord](c, "starships")
}

func (c *Client) Vehicles() ([]vehicleRecord, error) { return fetchAll[vehicleRecord](c, "vehicles") }

func (c *Client) Species() ([]speciesRecord, error) { return fetchAll[speciesRecord](c, "species") }

func (c *Client) Planets() ([]planetRecord, error) { return fetchAll[planetRecord](c, "planets") }
