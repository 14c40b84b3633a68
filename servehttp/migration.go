package servehttp

import (
	"context"

	"orghub/account"
	"orghub/activity"
	"orghub/authority"
	"orghub/domain/category"
	"orghub/domain/event"
	"orghub/domain/gallery"
	"orghub/domain/member"
	"orghub/domain/news"
	"orghub/persistence"
)

func Models() []interface{} {
	models := authority.Models()
	return append(models, &account.User{}, &activity.Record{}, &category.Category{}, &event.Event{},
		&member.Member{}, &news.News{}, &gallery.Gallery{})
}

// Migrate creates or extends the tables of every model. Concurrent instances may race on it.
func Migrate(ds *persistence.DataSourceManager) error {
	return ds.GormDB(context.Background()).AutoMigrate(Models()...).Error
}
