package multiblog

// IndexRoute groups posts for route in a single pass: the posts on route
// (exact, case-sensitive match), every distinct route in the corpus and the
// distinct categories of the matching posts. Routes and categories keep
// first-seen order.
func IndexRoute(posts []Post, route string, settings Settings) RouteIndex {
	idx := RouteIndex{
		Articles:   []Post{},
		Routes:     []string{},
		Categories: []string{},
		Site:       SiteMeta{Title: settings.Title, Description: settings.Description},
	}
	seenRoutes := make(map[string]struct{})
	seenCategories := make(map[string]struct{})
	for _, p := range posts {
		if _, ok := seenRoutes[p.Route]; !ok {
			seenRoutes[p.Route] = struct{}{}
			idx.Routes = append(idx.Routes, p.Route)
		}
		if p.Route != route {
			continue
		}
		idx.Articles = append(idx.Articles, p)
		for _, c := range p.Categories {
			if _, ok := seenCategories[c]; ok {
				continue
			}
			seenCategories[c] = struct{}{}
			idx.Categories = append(idx.Categories, c)
		}
	}
	return idx
}
