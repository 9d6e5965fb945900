package metrics

// RecordListing counts the items served by a listing page.
func (m *Metrics) RecordListing(listing string, items int) {
	m.safeExecute("RecordListing", func() {
		m.ListingItemsTotal.WithLabelValues(listing).Add(float64(items))
	})
}

// RecordProfileLookup records one external profile resolution; result is "ok" or "fallback".
func (m *Metrics) RecordProfileLookup(result string) {
	m.safeExecute("RecordProfileLookup", func() {
		m.ProfileLookupsTotal.WithLabelValues(result).Inc()
	})
}

func (m *Metrics) RecordLikeToggle(target string, isLiked bool) {
	m.safeExecute("RecordLikeToggle", func() {
		direction := "down"
		if isLiked {
			direction = "up"
		}
		m.LikeTogglesTotal.WithLabelValues(target, direction).Inc()
	})
}

func (m *Metrics) RecordCascadeDelete(entity string) {
	m.safeExecute("RecordCascadeDelete", func() {
		m.CascadeDeletesTotal.WithLabelValues(entity).Inc()
	})
}

// RecordCleanup records one hygiene run and the rows it removed per table.
func (m *Metrics) RecordCleanup(removed map[string]int64, err error) {
	m.safeExecute("RecordCleanup", func() {
		if err != nil {
			m.CleanupRunsTotal.WithLabelValues("error").Inc()
			return
		}
		m.CleanupRunsTotal.WithLabelValues("success").Inc()
		for table, n := range removed {
			m.CleanupRowsRemoved.WithLabelValues(table).Add(float64(n))
		}
	})
}
