package docstore

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
)

// mediaUpdate builds the update document that replaces the media keys of a
// stored document with rec and bumps its revision.
func mediaUpdate(rec media.Record) bson.D {
	fields := mediadoc.Fields(rec)
	set := bson.D{}
	unset := bson.D{}
	for _, key := range mediadoc.MediaKeys {
		if v, ok := fields[key]; ok {
			set = append(set, bson.E{Key: key, Value: v})
		} else {
			unset = append(unset, bson.E{Key: key, Value: ""})
		}
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: revisionField, Value: int64(1)}}},
	}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

// replacement builds a whole document for Put, dropping reserved keys the
// caller may have carried over from a previous read.
func replacement(fields map[string]any, revision int64) bson.D {
	doc := make(bson.D, 0, len(fields)+1)
	for k, v := range fields {
		if k == idField || k == revisionField {
			continue
		}
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return append(doc, bson.E{Key: revisionField, Value: revision})
}
