package engine

import "fmt"

// Migrate copies every record of src into dst, keeping ids. It works in both
// directions between the file and the Postgres backends.
func Migrate(src, dst Store) error {
	scopes, err := src.Scopes()
	if err != nil {
		return fmt.Errorf("failed to list scopes: %w", err)
	}

	for _, scope := range scopes {
		collections, err := src.Collections(scope)
		if err != nil {
			return fmt.Errorf("failed to list collections for scope %s: %w", scope, err)
		}

		for _, collection := range collections {
			records, err := src.List(scope, collection)
			if err != nil {
				return fmt.Errorf("failed to dump collection %s: %w", collection, err)
			}

			for _, rec := range records {
				if _, err := dst.Put(scope, collection, rec); err != nil {
					return fmt.Errorf("failed to copy record %s into destination: %w", RecordID(rec), err)
				}
			}
		}
	}

	return nil
}
