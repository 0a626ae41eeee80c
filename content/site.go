package content

// Site is the catalog behind every page. It is read-only once loaded.
type Site struct {
	Name       string   `yaml:"name"`
	Headline   string   `yaml:"headline"`
	Location   string   `yaml:"location"`
	Roles      []string `yaml:"roles"`
	Portrait   Image    `yaml:"portrait"`
	Footer     string   `yaml:"footer"`
	WritingURL string   `yaml:"writing_url"`
	Social     []Link   `yaml:"social"`
	Updates    []Update `yaml:"updates"`
	Work       Work     `yaml:"work"`
	About      About    `yaml:"about"`

	// Posts is loaded from posts/*.md, ordered by Position.
	Posts []Post `yaml:"-"`
}

// Link is an outbound link rendered with an icon.
type Link struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Icon string `yaml:"icon"`
}

// Image references a static asset.
type Image struct {
	Src    string `yaml:"src"`
	Alt    string `yaml:"alt"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Tag is a coloured label. Color names a palette entry.
type Tag struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

// Update is one entry of the home page timeline.
type Update struct {
	Date  string `yaml:"date"`
	Text  string `yaml:"text"`
	Label Tag    `yaml:"label"`
}

// TagGroup is a titled set of tags sharing a colour.
type TagGroup struct {
	Title string   `yaml:"title"`
	Color string   `yaml:"color"`
	Tags  []string `yaml:"tags"`
}

// Entry is a position or degree on the work page.
type Entry struct {
	Logo     string `yaml:"logo"`
	Role     string `yaml:"role"`
	Org      string `yaml:"org"`
	Location string `yaml:"location"`
	Period   string `yaml:"period"`
}

// Tool is a card in the work page stack grid.
type Tool struct {
	Name     string `yaml:"name"`
	Logo     string `yaml:"logo"`
	Category string `yaml:"category"`
}

// Work is the résumé page.
type Work struct {
	Title          string     `yaml:"title"`
	Subtitle       string     `yaml:"subtitle"`
	Role           string     `yaml:"role"`
	Photo          Image      `yaml:"photo"`
	Buttons        []Link     `yaml:"buttons"`
	Bio            string     `yaml:"bio"`
	Experience     []Entry    `yaml:"experience"`
	Skills         []TagGroup `yaml:"skills"`
	Education      []Entry    `yaml:"education"`
	EducationPhoto Image      `yaml:"education_photo"`
	Stack          []Tool     `yaml:"stack"`
	Contact        []Link     `yaml:"contact"`
}

// About is the personal page.
type About struct {
	Title    string     `yaml:"title"`
	Subtitle string     `yaml:"subtitle"`
	Photo    Image      `yaml:"photo"`
	Intro    string     `yaml:"intro"`
	Groups   []TagGroup `yaml:"groups"`
	Connect  string     `yaml:"connect"`
	Chat     Link       `yaml:"chat"`
}
