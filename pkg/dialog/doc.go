/*
Package dialog implements the dialog iterator, the state machine of one dialog playthrough.

An Iterator starts on the first item. Next leaves the current item with the player's Answer,
stores Select and Prompt answers that declare a storeKey, and moves to the successor:

  - the next item in sequence, unless
  - the item declares nextLine, unless
  - the chosen choice of a Select declares its own nextLine.

The dialog is over when Current returns nil.
*/
package dialog
