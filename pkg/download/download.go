// Package download goes to a PDB web site and gets MMTF coordinates.
// The main point is to visit the web page and return a reader that
// can be used like the file readers, or a decoded structure.
package download

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/andrew-torda/mmtf/pkg/zwrap"
	"github.com/pkg/errors"
)

// Site is where we get files from. The url is Base + code + Suffix.
type Site struct {
	Base   string
	Suffix string
}

// Sites are the servers we know. Codes are upper case for RCSB.
var Sites = []Site{
	{"https://mmtf.rcsb.org/v1.0/full/", ""},
	{"https://mmtf.rcsb.org/v1.0/full/", ".mmtf.gz"},
	{"https://mmtf.rcsb.org/v1.0/reduced/", ""},
}

// Client fetches files. The zero value uses http.DefaultClient and the
// first site.
type Client struct {
	HTTP *http.Client
	Site Site
}

// NewClient picks one of Sites. If siteNum is too big, we use a modulo
// to wrap it around, rather than generate an error. This makes it easier
// to cycle through them or pick one at random.
func NewClient(siteNum int) *Client {
	if siteNum < 0 {
		siteNum = -siteNum
	}
	return &Client{HTTP: http.DefaultClient, Site: Sites[siteNum%len(Sites)]}
}

// URL is where the structure acqCode lives.
func (c *Client) URL(acqCode string) string {
	s := c.Site
	if s.Base == "" {
		s = Sites[0]
	}
	return s.Base + strings.ToUpper(acqCode) + s.Suffix
}

// Get is given a four letter pdb code and returns a reader for the
// uncompressed bytes. Servers may gzip whatever they like, so we look
// at the data, not the site.
func (c *Client) Get(ctx context.Context, acqCode string) (io.ReadCloser, error) {
	if len(acqCode) != 4 {
		return nil, errors.New("acq code should be four char, not " + acqCode)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	url := c.URL(acqCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, url)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("wanted %s using %s, got %s", acqCode, url, resp.Status)
	}
	rdr, err := zwrap.WrapMaybe(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, errors.Wrap(err, url)
	}
	return rdr, nil
}

// Fetch gets acqCode and decodes it with dec. dec may be nil.
func (c *Client) Fetch(ctx context.Context, acqCode string, dec *mmtf.Decoder) (*mmtf.StructureData, error) {
	rdr, err := c.Get(ctx, acqCode)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	if dec == nil {
		dec = mmtf.NewDecoder(nil)
	}
	sd, err := dec.DecodeReader(rdr)
	if err != nil {
		return nil, errors.WithMessage(err, acqCode)
	}
	return sd, nil
}
