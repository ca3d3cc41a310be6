// Package store persists packed column values in a pebble database, one row
// per key, addressed by table name and KSUID row id.
//
// Each row stores exactly what column.Column.ToStoredData returned, tagged
// with its kind so that Load hands the column the same Go type back:
//
//	db, err := store.Open(dir, nil)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	id, err := db.Insert("users", col)
//	...
//	col, err = db.Load("users", id, set, column.WithStorageMode(format.StorageBinary))
package store
