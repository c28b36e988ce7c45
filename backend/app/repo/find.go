package repo

import "gorm.io/gorm"

// findOne loads the first row of q. A miss is (nil, nil) and is not logged
// by gorm, unlike First.
func findOne[T any](q *gorm.DB) (*T, error) {
	var v T
	res := q.Limit(1).Find(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &v, nil
}
