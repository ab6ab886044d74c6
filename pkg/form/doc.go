/*
Package form validates raw chat input one field at a time.

Validators are pure functions: they take the raw text and return either a
normalized value or a *ValidationError describing why the input was rejected.
The finite set of form fields is modelled as tagged variants (OrderField and
ProductField), each carrying its own validator and setter, so workflows never
address fields by runtime strings.
*/
package form
