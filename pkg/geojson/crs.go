package geojson

// CRSType distinguishes named and linked coordinate reference systems.
type CRSType string

const (
	CRSName CRSType = "name"
	CRSLink CRSType = "link"
)

// CRS is a pre-RFC 7946 coordinate reference system member. RFC 7946 drops
// it but many GIS producers still emit it.
type CRS struct {
	Type       CRSType       `json:"type" yaml:"type"`
	Properties CRSProperties `json:"properties" yaml:"properties"`
}

// CRSProperties holds name for named CRS and href/type for linked CRS.
type CRSProperties struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Commonly used named reference systems.
var (
	WGS84       = NewNamedCRS("EPSG:4326")
	WebMercator = NewNamedCRS("EPSG:3857")
	CGCS2000    = NewNamedCRS("EPSG:4490")
	Beijing54   = NewNamedCRS("EPSG:4214")
	Xian80      = NewNamedCRS("EPSG:4610")
)

func NewNamedCRS(name string) CRS {
	return CRS{Type: CRSName, Properties: CRSProperties{Name: name}}
}

// NewLinkedCRS creates a linked CRS. linkType may be empty.
func NewLinkedCRS(href, linkType string) CRS {
	return CRS{Type: CRSLink, Properties: CRSProperties{Href: href, Type: linkType}}
}

func IsNamedCRS(c CRS) bool { return c.Type == CRSName }

func IsLinkedCRS(c CRS) bool { return c.Type == CRSLink }
