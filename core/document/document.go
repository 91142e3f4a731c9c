package document

// document/Document.java

/*
Documents are the unit of indexing and search.

A Document is a set of fields. Each field has a name and a textual
value. A field may be stored with the document, in which case it is
returned with search hits on the document. Thus each document should
typically contain one or more stored fields which uniquely identify
it.

Note that fields which are not stored are not available in documents
retrieved from the index, e.g. with IndexReader.Document().
*/
type Document struct {
	fields []*Field
	boost  float32
}

/** Constructs a new document with no fields. */
func NewDocument() *Document {
	return &Document{boost: 1.0}
}

func (doc *Document) Fields() []*Field {
	return doc.fields
}

/*
Adds a field to a document. Several fields may be added with the same
name. In this case, if the fields are indexed, their text is treated
as though appended for the purposes of search.
*/
func (doc *Document) Add(field *Field) {
	doc.fields = append(doc.fields, field)
}

// Removes all fields with the given name.
func (doc *Document) RemoveFields(name string) {
	kept := doc.fields[:0]
	for _, f := range doc.fields {
		if f.Name() != name {
			kept = append(kept, f)
		}
	}
	doc.fields = kept
}

// Returns the first field with the given name, or nil.
func (doc *Document) GetField(name string) *Field {
	for _, f := range doc.fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

/*
Returns the string value of the field with the given name if any
exist in this document, or "". If multiple fields exist with this
name, this method returns the first value added.
*/
func (doc *Document) Get(name string) string {
	for _, f := range doc.fields {
		if f.Name() == name && !f.IsBinary() {
			return f.StringValue()
		}
	}
	return ""
}

// Returns the string values of all fields with the given name.
func (doc *Document) GetValues(name string) []string {
	var ans []string
	for _, f := range doc.fields {
		if f.Name() == name && !f.IsBinary() {
			ans = append(ans, f.StringValue())
		}
	}
	return ans
}

// Returns the first binary value of the named field, or nil.
func (doc *Document) GetBinaryValue(name string) []byte {
	for _, f := range doc.fields {
		if f.Name() == name && f.IsBinary() {
			return f.BinaryValue()
		}
	}
	return nil
}

/*
Sets a boost factor for hits on any field of this document. This
value will be multiplied into the score of all hits on this
document.
*/
func (doc *Document) SetBoost(boost float32) {
	doc.boost = boost
}

func (doc *Document) Boost() float32 {
	return doc.boost
}

func (doc *Document) String() string {
	s := "Document<"
	for i, f := range doc.fields {
		if i > 0 {
			s += " "
		}
		s += f.String()
	}
	return s + ">"
}
