package plate

import "strings"

// RegionSet is the injected dictionary of known region names. It is
// advisory: membership confirms or refines a structural match and guides
// the best-effort tier, but absence never rejects an otherwise valid match,
// since issuing offices change over time.
type RegionSet struct {
	ordered []string
	members map[string]struct{}
}

// NewRegionSet builds a read-only dictionary from the given names,
// preserving order and dropping duplicates.
func NewRegionSet(names ...string) *RegionSet {
	s := &RegionSet{members: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := s.members[name]; dup {
			continue
		}
		s.members[name] = struct{}{}
		s.ordered = append(s.ordered, name)
	}
	return s
}

// Contains reports exact membership.
func (s *RegionSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[name]
	return ok
}

// Find returns the longest known region name appearing anywhere in text,
// or "" when none does. Earlier entries win length ties.
func (s *RegionSet) Find(text string) string {
	if s == nil || text == "" {
		return ""
	}
	best := ""
	for _, name := range s.ordered {
		if len(name) > len(best) && strings.Contains(text, name) {
			best = name
		}
	}
	return best
}

// Names returns the dictionary contents in registration order.
func (s *RegionSet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ordered...)
}

// DefaultRegions returns the bundled dictionary of Japanese issuing-office
// names.
func DefaultRegions() *RegionSet {
	return NewRegionSet(
		// Tokyo
		"品川", "練馬", "足立", "杉並", "世田谷", "江東", "葛飾", "江戸川", "板橋",
		"台東", "墨田", "荒川", "北", "豊島", "中野", "目黒", "大田", "港",
		"千代田", "中央", "文京", "新宿", "渋谷",
		// Kanto
		"横浜", "川崎", "相模", "湘南", "千葉", "習志野", "袖ケ浦", "野田",
		"水戸", "土浦", "つくば", "宇都宮", "とちぎ", "那須", "前橋", "高崎",
		// Kansai
		"大阪", "なにわ", "和泉", "堺", "神戸", "姫路", "京都", "奈良", "滋賀",
		// Chubu
		"名古屋", "尾張小牧", "一宮", "春日井", "豊田", "岡崎", "豊橋", "静岡", "浜松",
		"金沢", "富山", "福井", "長野", "松本", "諏訪", "山梨", "甲府",
		// Other
		"札幌", "函館", "旭川", "釧路", "帯広", "仙台", "宮城", "福島", "郡山", "いわき",
		"新潟", "長岡", "福岡", "北九州", "筑豊", "久留米", "佐賀", "長崎", "熊本",
		"大分", "宮崎", "鹿児島", "沖縄", "広島", "福山", "岡山", "倉敷", "山口",
		"下関", "鳥取", "島根", "松江", "徳島", "香川", "高知", "愛媛", "松山",
	)
}
